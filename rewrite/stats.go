package rewrite

import "fmt"

// Stats counts the work done by one or more rewrites.
type Stats struct {
	FilesProcessed        int
	IncludeDirectivesSeen int
	LinesRewritten        int
	AmbiguityWarnings     int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.FilesProcessed += other.FilesProcessed
	s.IncludeDirectivesSeen += other.IncludeDirectivesSeen
	s.LinesRewritten += other.LinesRewritten
	s.AmbiguityWarnings += other.AmbiguityWarnings
}

func (s *Stats) record(res LineResult) {
	if !res.IsDirective {
		return
	}
	s.IncludeDirectivesSeen++
	if res.Ambiguous {
		s.AmbiguityWarnings++
	}
	if res.Outcome == Rewritten {
		s.LinesRewritten++
	}
}

// Summary renders the end-of-run report, one line per counter.
func (s Stats) Summary() []string {
	return []string{
		fmt.Sprintf("Files inspected     : %d", s.FilesProcessed),
		fmt.Sprintf("#include directives : %d", s.IncludeDirectivesSeen),
		fmt.Sprintf("Lines rewritten     : %d", s.LinesRewritten),
		fmt.Sprintf("Ambiguity warnings  : %d", s.AmbiguityWarnings),
	}
}
