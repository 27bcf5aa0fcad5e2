package trajet

import (
	"fmt"
	"math"
	"strconv"
)

func directInstructions(r *DirectRoute, forward bool) []string {
	return []string{
		boardStep(r.Line, r.From, forward),
		fmt.Sprintf("Get off at %s", r.To.Name),
		fareStep(r.Line.Fare),
	}
}

func transferInstructions(r *TransferRoute, firstForward, secondForward bool) []string {
	steps := []string{
		boardStep(r.FirstLine, r.From, firstForward),
		fmt.Sprintf("Get off at %s", r.Transfer.Name),
	}
	if meters := math.Round(r.Walk); meters >= 1 {
		steps = append(steps, fmt.Sprintf("Walk %d m to %s", int(meters), r.Connection.Name))
	}
	steps = append(steps,
		fmt.Sprintf("Transfer to %s at %s%s", r.SecondLine.Name, r.Connection.Name, towards(r.SecondLine, secondForward)),
		fmt.Sprintf("Get off at %s", r.To.Name),
		fareStep(r.FirstLine.Fare+r.SecondLine.Fare),
	)
	return steps
}

func boardStep(line Line, at Stop, forward bool) string {
	return fmt.Sprintf("Take %s at %s%s", line.Name, at.Name, towards(line, forward))
}

func towards(line Line, forward bool) string {
	end := line.Terminus
	if !forward {
		end = line.Depart
	}
	if end == "" {
		return ""
	}
	return fmt.Sprintf(" (towards %s)", end)
}

func fareStep(fare float64) string {
	return "Total fare: " + strconv.FormatFloat(fare, 'f', -1, 64)
}
