package application

import "progress-sync/progress/domain"

// Merge aplica um Patch raso sobre o estado atual.
//
// Cada campo presente substitui o atual por inteiro (trips não é mesclado item a
// item); campos ausentes ficam como estavam. O estado de entrada não é alterado.
func Merge(cur domain.ProgressState, p domain.Patch) domain.ProgressState {
	out := cur
	out.Trips = cloneTrips(cur.Trips)

	if p.Trips != nil {
		out.Trips = cloneTrips(*p.Trips)
	}
	if p.ClickCount != nil {
		out.ClickCount = *p.ClickCount
	}
	if p.GlobalHighestProgress != nil {
		out.GlobalHighestProgress = *p.GlobalHighestProgress
	}
	if p.LastClickTime != nil {
		out.LastClickTime = *p.LastClickTime
	}
	return normalize(out)
}

func cloneTrips(in []domain.TripProgress) []domain.TripProgress {
	if in == nil {
		return nil
	}
	out := make([]domain.TripProgress, len(in))
	copy(out, in)
	return out
}
