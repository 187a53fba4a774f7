package quality

// Report counts verdicts per category for dataset curation. The zero value is
// an empty report.
type Report struct {
	Total    int               `json:"total"`
	Accepted int               `json:"accepted"`
	Counts   map[Rejection]int `json:"counts"`
}

func NewReport() *Report {
	return &Report{Counts: make(map[Rejection]int, len(Rejections))}
}

func (r *Report) Add(v Verdict) {
	if r.Counts == nil {
		r.Counts = make(map[Rejection]int, len(Rejections))
	}
	r.Total++
	if v.Accepted {
		r.Accepted++
	}
	r.Counts[v.Rejection]++
}

// AcceptanceRate is the accepted share in [0,1], 0 for an empty report.
func (r *Report) AcceptanceRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Total)
}
