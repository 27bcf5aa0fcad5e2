package trajet

// Province, Region and District form the administrative hierarchy lines and
// stops are filed under. The search core never reads them.
type Province struct {
	ID   int64
	Name string
}

type Region struct {
	ID         int64
	Name       string
	ProvinceID int64
}

type District struct {
	ID       int64
	Name     string
	RegionID int64
}
