package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/queue"
	"github.com/iliyamo/classroom-client/internal/session"
	"github.com/iliyamo/classroom-client/internal/token"
)

var errUsage = errors.New("invalid usage")

func (a *app) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "me":
		return a.me(ctx)
	case "status":
		return a.status(ctx)
	case "courses":
		return a.courses(ctx, args)
	case "classes":
		return a.classes(ctx, args)
	case "class":
		return a.class(ctx, args)
	case "assessments":
		return a.assessments(ctx, args)
	case "scores":
		return a.scores(ctx, args)
	case "audit":
		return a.audit(ctx)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, name)
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

// requireProfile loads the signed-in user, failing fast when no token is
// stored at all.
func (a *app) requireProfile(ctx context.Context) (*model.User, error) {
	if !a.sess.IsAuthenticated(ctx) {
		return nil, session.ErrNotLoggedIn
	}
	return a.sess.FetchProfile(ctx)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("%w: login needs -email", errUsage)
	}
	password, err := readPassword(a.in, "Password: ")
	if err != nil {
		return err
	}
	if _, err := a.sess.Login(ctx, model.LoginRequest{Email: *email, Password: password}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", a.sess.FullName(), a.sess.Profile().Role)
	return nil
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise, so that a password can be piped in.
func readPassword(in *os.File, prompt string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.sess.IsAuthenticated(ctx) {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	err := a.sess.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return err
}

func (a *app) me(ctx context.Context) error {
	u, err := a.requireProfile(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintf(w, "ID\t%s\n", u.ID)
	fmt.Fprintf(w, "Name\t%s\n", u.FullName())
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	if u.ThemePreference != "" {
		fmt.Fprintf(w, "Theme\t%s\n", u.ThemePreference)
	}
	return w.Flush()
}

// status reports what the token store holds without calling the API.
func (a *app) status(ctx context.Context) error {
	access, err := a.store.AccessToken(ctx)
	if err != nil {
		return err
	}
	refresh, err := a.store.RefreshToken(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintf(w, "Store\t%s (profile %s)\n", a.cfg.TokenStore, a.cfg.Profile)
	if access == "" {
		fmt.Fprintln(w, "Session\tnot logged in")
		return w.Flush()
	}
	fmt.Fprintln(w, "Session\tlogged in")
	fmt.Fprintf(w, "Refresh token\t%t\n", refresh != "")

	claims, ok := token.Decode(access)
	if !ok {
		fmt.Fprintln(w, "Access token\tunreadable")
		return w.Flush()
	}
	fmt.Fprintf(w, "Subject\t%s\n", claims.Subject)
	if claims.Role != "" {
		fmt.Fprintf(w, "Role\t%s\n", claims.Role)
	}
	if claims.HasExpiry {
		state := "valid"
		if token.IsExpired(access, a.clock) {
			state = "expired, will refresh on next call"
		}
		fmt.Fprintf(w, "Expires\t%s (%s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	return w.Flush()
}

func (a *app) courses(ctx context.Context, args []string) error {
	fs := newFlags("courses")
	active := fs.Bool("active", false, "only active courses")
	if err := parse(fs, args); err != nil {
		return err
	}
	list, err := a.svc.Courses.List(ctx)
	if err != nil {
		return err
	}
	if *active {
		list = model.ActiveCourses(list)
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tCODE\tTITLE\tACTIVE")
	for _, c := range model.SortCoursesByCode(list) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", c.ID, c.CourseCode, c.Title, c.IsActive)
	}
	return w.Flush()
}

func (a *app) classes(ctx context.Context, args []string) error {
	fs := newFlags("classes")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", model.DefaultPerPage, "page size")
	all := fs.Bool("all", false, "fetch every page and summarise")
	if err := parse(fs, args); err != nil {
		return err
	}

	var (
		list   []model.Class
		footer string
	)
	if *all {
		rows, err := a.svc.Classes.ListAll(ctx)
		if err != nil {
			return err
		}
		list = rows
		sum := model.SummarizeClasses(rows)
		footer = fmt.Sprintf("%d active classes, %d students on average", sum.ActiveClasses, sum.AverageClassSize)
	} else {
		p, err := a.svc.Classes.List(ctx, *page, *perPage)
		if err != nil {
			return err
		}
		list = p.Data
		footer = fmt.Sprintf("page %d of %d (%d classes)", p.Page, p.TotalPages, p.Total)
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tSECTION\tSCHEDULE\tSTUDENTS\tACTIVE")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n", c.ID, c.Name, c.Section, c.Schedule, c.StudentCount, c.IsActive)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, footer)
	return nil
}

// class prints the teacher view of one class: overview, statistics, and
// per-assessment averages with the students falling behind.
func (a *app) class(ctx context.Context, args []string) error {
	fs := newFlags("class")
	id := fs.String("id", "", "class id")
	threshold := fs.Float64("threshold", 60, "flag students averaging below this")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: class needs -id", errUsage)
	}
	classID := model.ID(*id)

	me, err := a.requireProfile(ctx)
	if err != nil {
		return err
	}
	details, err := a.svc.Classes.Get(ctx, classID)
	if err != nil {
		return err
	}
	stats, err := a.svc.Classes.Stats(ctx, classID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s %s), section %s\n", details.Name, details.Course.CourseCode, details.Course.Title, details.Section)
	fmt.Fprintf(a.out, "Teacher: %s %s\n", details.Teacher.FirstName, details.Teacher.LastName)

	classes, err := a.svc.Classes.ListAll(ctx)
	if err != nil {
		return err
	}
	courses, err := a.svc.Courses.List(ctx)
	if err != nil {
		return err
	}
	if ov, ok := model.OverviewFor(classes, courses, me.ID, classID); ok {
		fmt.Fprintf(a.out, "Students: %d\n", ov.StudentCount)
	}
	fmt.Fprintf(a.out, "Assessments: %d, average %.1f, completion %.0f%%\n",
		stats.AssessmentCount, stats.AverageScore, stats.CompletionRate)
	for _, g := range []string{"A", "B", "C", "D", "F"} {
		fmt.Fprintf(a.out, "  %s: %d\n", g, stats.GradeDistribution[g])
	}

	roster, err := a.svc.Classes.Students(ctx, classID, 1, 100)
	if err != nil {
		return err
	}
	assessments, err := a.svc.Assessments.List(ctx)
	if err != nil {
		return err
	}
	numericID, _ := strconv.ParseInt(classID.String(), 10, 64)
	assessments = model.AssessmentsByClass(assessments, numericID)
	inClass := make(map[int64]bool, len(assessments))
	for _, as := range assessments {
		inClass[as.ID] = true
	}

	var scores []model.Score
	for _, s := range roster.Data {
		sid, _ := strconv.ParseInt(s.ID.String(), 10, 64)
		got, err := a.svc.Scores.ByStudent(ctx, sid)
		if err != nil {
			return err
		}
		for _, sc := range got {
			if inClass[sc.AssessmentID] {
				scores = append(scores, sc)
			}
		}
	}

	w := a.table()
	fmt.Fprintln(w, "ASSESSMENT\tTYPE\tDATE\tAVERAGE")
	for _, as := range assessments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n", as.Title, as.Type, as.Date, model.AverageScore(scores, as.ID))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	low := model.LowPerformingStudents(scores, *threshold)
	if len(low) == 0 {
		return nil
	}
	fmt.Fprintf(a.out, "Below %.0f:\n", *threshold)
	for _, sid := range low {
		if u, ok := model.FindUser(roster.Data, model.IDFromInt(sid)); ok {
			fmt.Fprintf(a.out, "  %s <%s>\n", u.FullName(), u.Email)
		} else {
			fmt.Fprintf(a.out, "  student %d\n", sid)
		}
	}
	return nil
}

func (a *app) assessments(ctx context.Context, args []string) error {
	fs := newFlags("assessments")
	upcoming := fs.Bool("upcoming", false, "only future assessments, soonest first")
	recent := fs.Bool("recent", false, "only past assessments, latest first")
	classID := fs.Int64("class", 0, "only assessments of this class")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *upcoming && *recent {
		return fmt.Errorf("%w: -upcoming and -recent are exclusive", errUsage)
	}

	list, err := a.svc.Assessments.List(ctx)
	if err != nil {
		return err
	}
	if *classID > 0 {
		list = model.AssessmentsByClass(list, *classID)
	}
	now := a.clock.Now()
	switch {
	case *upcoming:
		list = model.UpcomingAssessments(list, now)
	case *recent:
		list = model.RecentAssessments(list, now)
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tCLASS\tTITLE\tTYPE\tDATE")
	for _, as := range list {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", as.ID, as.ClassID, as.Title, as.Type, as.Date)
	}
	return w.Flush()
}

func (a *app) scores(ctx context.Context, args []string) error {
	fs := newFlags("scores")
	studentID := fs.Int64("student", 0, "student id (default: yourself)")
	title := fs.String("assessment", "", "only the score for this assessment title")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *studentID == 0 {
		me, err := a.requireProfile(ctx)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(me.ID.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("profile id %q is not numeric", me.ID)
		}
		*studentID = id
	}

	if *title != "" {
		s, err := a.svc.Scores.ByStudentAndAssessment(ctx, *studentID, *title)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: %.1f\n", *title, s.ScoreValue)
		if s.Feedback != "" {
			fmt.Fprintf(a.out, "Feedback: %s\n", s.Feedback)
		}
		return nil
	}

	list, err := a.svc.Scores.ByStudent(ctx, *studentID)
	if err != nil {
		return err
	}
	titles := make(map[int64]string)
	if as, err := a.svc.Assessments.List(ctx); err == nil {
		for _, x := range as {
			titles[x.ID] = x.Title
		}
	} else {
		a.log.Debug("assessment titles unavailable", "error", err)
	}

	w := a.table()
	fmt.Fprintln(w, "ASSESSMENT\tSCORE\tSUBMITTED\tFEEDBACK")
	var sum float64
	for _, s := range list {
		name := titles[s.AssessmentID]
		if name == "" {
			name = "#" + strconv.FormatInt(s.AssessmentID, 10)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\n", name, s.ScoreValue, s.SubmissionDate, s.Feedback)
		sum += s.ScoreValue
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(list) > 0 {
		fmt.Fprintf(a.out, "Average: %.1f over %d scores\n", sum/float64(len(list)), len(list))
	}
	return nil
}

// audit drains the session event queue into <LMS_AUDIT_DIR>/session.log
// until interrupted.
func (a *app) audit(ctx context.Context) error {
	if a.cfg.RabbitMQURL == "" {
		return errors.New("audit needs RABBITMQ_URL")
	}
	c := &queue.Consumer{URL: a.cfg.RabbitMQURL, Dir: a.cfg.AuditDir, Log: a.log}
	a.log.Info("auditing session events", "dir", a.cfg.AuditDir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
