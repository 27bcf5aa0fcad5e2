package trajetdb

import (
	"context"
	"database/sql"
	"fmt"

	"trajet.transit.mg/internal/textnorm"
	"trajet.transit.mg/internal/trajet"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Client) CreateProvince(ctx context.Context, p trajet.Province) (int64, error) {
	return insertID(ctx, c.DB, "create_province",
		`INSERT INTO provinces (id, name) VALUES (?, ?)`,
		idOrNull(p.ID), p.Name)
}

func (c *Client) CreateRegion(ctx context.Context, r trajet.Region) (int64, error) {
	return insertID(ctx, c.DB, "create_region",
		`INSERT INTO regions (id, name, province_id) VALUES (?, ?, ?)`,
		idOrNull(r.ID), r.Name, r.ProvinceID)
}

func (c *Client) CreateDistrict(ctx context.Context, d trajet.District) (int64, error) {
	return insertID(ctx, c.DB, "create_district",
		`INSERT INTO districts (id, name, region_id) VALUES (?, ?, ?)`,
		idOrNull(d.ID), d.Name, d.RegionID)
}

// CreateLine stores line. A zero ID is assigned by the database; an empty
// status is stored as Pending.
func (c *Client) CreateLine(ctx context.Context, line trajet.Line) (int64, error) {
	return createLine(ctx, c.DB, line, "")
}

func createLine(ctx context.Context, db execer, line trajet.Line, externalID string) (int64, error) {
	status := line.Status
	if status == "" {
		status = trajet.LineStatusPending
	}
	return insertID(ctx, db, "create_line", `
		INSERT INTO lines (id, name, fare, depart, terminus, status, district_id, created_by, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idOrNull(line.ID), line.Name, line.Fare, line.Depart, line.Terminus, string(status),
		toNullInt64(line.DistrictID), line.CreatedBy, toNullString(externalID))
}

// SetLineStatus moves a line between Pending and Accepted.
func (c *Client) SetLineStatus(ctx context.Context, lineID int64, status trajet.LineStatus) error {
	res, err := c.DB.ExecContext(ctx, `UPDATE lines SET status = ? WHERE id = ?`, string(status), lineID)
	if err != nil {
		return fmt.Errorf("set_line_status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set_line_status: line %d: %w", lineID, sql.ErrNoRows)
	}
	return nil
}

// CreateStop stores one stop row, attached to stop.Line when set.
func (c *Client) CreateStop(ctx context.Context, stop trajet.Stop) (int64, error) {
	var lineID *int64
	if id, ok := stop.LineID(); ok {
		lineID = &id
	}
	return createStop(ctx, c.DB, stop, lineID)
}

// CreateStopForLines stores stop once per line in lineIDs, so a stop shared by
// several lines becomes several rows. With no lines a single orphan row is
// stored. The returned ids follow lineIDs.
func (c *Client) CreateStopForLines(ctx context.Context, stop trajet.Stop, lineIDs []int64) ([]int64, error) {
	var ids []int64
	err := c.withTx(ctx, "create_stop_for_lines", func(tx *sql.Tx) error {
		if len(lineIDs) == 0 {
			id, err := createStop(ctx, tx, stop, nil)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		}
		for _, lineID := range lineIDs {
			row := stop
			row.ID = 0
			id, err := createStop(ctx, tx, row, &lineID)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func createStop(ctx context.Context, db execer, stop trajet.Stop, lineID *int64) (int64, error) {
	return insertID(ctx, db, "create_stop", `
		INSERT INTO stops (id, name, name_key, latitude, longitude, line_id, district_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		idOrNull(stop.ID), stop.Name, textnorm.Normalize(stop.Name),
		toNullFloat64(stop.Latitude), toNullFloat64(stop.Longitude),
		toNullInt64(lineID), toNullInt64(stop.DistrictID), stop.CreatedBy)
}

// ListLines returns every line regardless of status, ordered by id.
func (c *Client) ListLines(ctx context.Context) ([]trajet.Line, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT id, name, fare, depart, terminus, status, district_id, created_by
		FROM lines
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list_lines: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var lines []trajet.Line
	for rows.Next() {
		var (
			line     trajet.Line
			status   string
			district sql.NullInt64
		)
		if err := rows.Scan(&line.ID, &line.Name, &line.Fare, &line.Depart, &line.Terminus,
			&status, &district, &line.CreatedBy); err != nil {
			return nil, fmt.Errorf("list_lines: %w", err)
		}
		line.Status = trajet.LineStatus(status)
		line.DistrictID = fromNullInt64(district)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list_lines: %w", err)
	}
	return lines, nil
}

func insertID(ctx context.Context, db execer, operation, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", operation, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", operation, err)
	}
	return id, nil
}
