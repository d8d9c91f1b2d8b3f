package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"jobscout/internal/detail"
	"jobscout/internal/jobs"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

const helpText = `commands:
  search <query>        run a new search (AND, OR, NOT, quotes, parentheses)
  more                  load the next page
  list                  show loaded results
  filter key=value ...  set filters for the next search
                        keys: date (all|today|3days|week|month), remote (true|false),
                        type (FULLTIME,PARTTIME,CONTRACTOR,INTERN), req, category, company
  save <n>              save or unsave result n
  saved                 list saved jobs
  show <n>              show details of result n
  help                  this text
  quit                  exit`

// shell runs one command per line against an aggregator
type shell struct {
	agg        *jobs.Aggregator
	view       *detail.View
	out        io.Writer
	overrides  models.FilterOverrides
	detailWait time.Duration
	pollEvery  time.Duration
}

func newShell(agg *jobs.Aggregator, view *detail.View, out io.Writer) *shell {
	return &shell{
		agg:        agg,
		view:       view,
		out:        out,
		detailWait: 30 * time.Second,
		pollEvery:  50 * time.Millisecond,
	}
}

var errQuit = errors.New("quit")

// exec runs one command line. It returns errQuit for quit.
func (s *shell) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "search":
		return s.search(ctx, arg)
	case "more":
		return s.more(ctx)
	case "list":
		s.printResults()
		return nil
	case "filter":
		return s.filter(arg)
	case "save":
		return s.toggle(ctx, arg)
	case "saved":
		s.printSaved()
		return nil
	case "show":
		return s.show(ctx, arg)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func (s *shell) search(ctx context.Context, q string) error {
	err := s.agg.RunSearch(ctx, q, s.overrides)
	if err != nil {
		return s.fetchError(err)
	}
	s.overrides = models.FilterOverrides{}
	st := s.agg.Snapshot()
	fmt.Fprintf(s.out, "query: %s\n", st.Query.Normalized)
	s.printResults()
	return nil
}

func (s *shell) more(ctx context.Context) error {
	fetched, err := s.agg.LoadMore(ctx)
	if err != nil {
		return s.fetchError(err)
	}
	if !fetched {
		fmt.Fprintln(s.out, "nothing more to load")
		return nil
	}
	s.printResults()
	return nil
}

// fetchError prefers the message the aggregator chose for the user
func (s *shell) fetchError(err error) error {
	if jobs.IsValidation(err) {
		return err
	}
	if msg := s.agg.Snapshot().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func (s *shell) filter(arg string) error {
	if arg == "" {
		return errors.New("usage: filter key=value ...")
	}
	next := s.overrides
	for _, pair := range strings.Fields(arg) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("bad filter %q, want key=value", pair)
		}
		switch strings.ToLower(key) {
		case "date":
			d := models.DatePosted(value)
			next.DatePosted = &d
		case "remote":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("remote must be true or false")
			}
			next.RemoteJobsOnly = &b
		case "type":
			next.EmploymentType = utils.StringPtr(value)
		case "req":
			next.JobRequirements = utils.StringPtr(value)
		case "category":
			next.JobCategory = utils.StringPtr(value)
		case "company":
			next.CompanyTypes = utils.StringPtr(value)
		default:
			return fmt.Errorf("unknown filter %q", key)
		}
	}
	s.overrides = next
	fmt.Fprintln(s.out, "filters apply to the next search")
	return nil
}

func (s *shell) result(arg string) (models.JobPosting, error) {
	n, err := strconv.Atoi(arg)
	results := s.agg.Snapshot().Results
	if err != nil || n < 1 || n > len(results) {
		return models.JobPosting{}, fmt.Errorf("pick a result between 1 and %d", len(results))
	}
	return results[n-1], nil
}

func (s *shell) toggle(ctx context.Context, arg string) error {
	job, err := s.result(arg)
	if err != nil {
		return err
	}
	saved, err := s.agg.ToggleSave(ctx, job)
	if err != nil {
		return err
	}
	verb := "removed from"
	if saved {
		verb = "added to"
	}
	fmt.Fprintf(s.out, "%s %s saved jobs\n", job.JobTitle, verb)
	return nil
}

func (s *shell) show(ctx context.Context, arg string) error {
	job, err := s.result(arg)
	if err != nil {
		return err
	}
	s.agg.SelectJob(job)

	deadline := time.Now().Add(s.detailWait)
	st := s.view.State()
	for st.Loading() && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollEvery):
		}
		st = s.view.State()
	}
	if st.Job == nil {
		return errors.New("no job selected")
	}

	j := st.Job
	fmt.Fprintf(s.out, "%s\n%s", j.JobTitle, j.EmployerName)
	if j.JobCity != nil {
		fmt.Fprintf(s.out, ", %s", *j.JobCity)
	}
	fmt.Fprintln(s.out)
	if j.JobApplyLink != nil {
		fmt.Fprintf(s.out, "apply: %s\n", *j.JobApplyLink)
	}
	switch {
	case st.Error != "":
		fmt.Fprintln(s.out, st.Error)
	case j.HasDescription():
		fmt.Fprintf(s.out, "\n%s\n", *j.JobDescription)
	case st.Loading():
		fmt.Fprintln(s.out, "details are still loading")
	}
	return nil
}

func (s *shell) printResults() {
	st := s.agg.Snapshot()
	if len(st.Results) == 0 {
		fmt.Fprintln(s.out, "no results")
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for i, j := range st.Results {
		mark := " "
		if st.IsSaved(j.JobID) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%d\t%s\t%s\t%s\n", mark, i+1, j.JobTitle, j.EmployerName, posted(j))
	}
	w.Flush()
	if st.TotalUnknown {
		fmt.Fprintf(s.out, "showing %d", len(st.Results))
	} else {
		fmt.Fprintf(s.out, "showing %d of %d", len(st.Results), st.TotalJobs)
	}
	if st.HasMore() {
		fmt.Fprint(s.out, ", type more for the next page")
	}
	fmt.Fprintln(s.out)
}

func (s *shell) printSaved() {
	saved := s.agg.Snapshot().Saved
	if len(saved) == 0 {
		fmt.Fprintln(s.out, "no saved jobs")
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, j := range saved {
		fmt.Fprintf(w, "%s\t%s\t%s\n", j.JobTitle, j.EmployerName, j.JobID)
	}
	w.Flush()
}

func posted(j models.JobPosting) string {
	t := j.PostedAt()
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
