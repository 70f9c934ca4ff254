// Package refs implements RefStore as described in spec.md §4.7: courses
// (named mutable refs, one file per course under .dock/links/helm/) and
// helm (the current-reference pointer, .dock/HELM, indirected through a
// course name).
package refs

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spacedockvcs/dock/pkg/dockerr"
	"github.com/spacedockvcs/dock/pkg/object"
	"github.com/spacedockvcs/dock/pkg/pathtable"
)

// CoreCourse is the reserved course name that always exists and can never
// be deleted (spec.md §3, Invariant 3).
const CoreCourse = "core"

const helmLinkPrefix = "link: "

// Store manages courses and helm for a single repository's .dock directory.
type Store struct {
	dockDir string // .dock
}

// New returns a Store rooted at the given .dock directory.
func New(dockDir string) *Store {
	return &Store{dockDir: dockDir}
}

func (s *Store) coursesDir() string {
	return pathtable.CoursesDir(s.dockDir)
}

func (s *Store) coursePath(name string) string {
	return pathtable.CourseFile(s.dockDir, name)
}

func (s *Store) helmPath() string {
	return pathtable.HelmFile(s.dockDir)
}

// Init creates the courses directory and the core course (empty: no
// starlog yet), then points helm at core. It is called once, at repository
// initialization.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.coursesDir(), 0o755); err != nil {
		return dockerr.Wrap("refs init: mkdir", dockerr.ErrIOError, err)
	}
	corePath := s.coursePath(CoreCourse)
	if _, err := os.Stat(corePath); os.IsNotExist(err) {
		if err := os.WriteFile(corePath, []byte(""), 0o644); err != nil {
			return dockerr.Wrap("refs init: write core course", dockerr.ErrIOError, err)
		}
	}
	if err := os.WriteFile(s.helmPath(), []byte(helmLinkPrefix+"links/helm/"+CoreCourse+"\n"), 0o644); err != nil {
		return dockerr.Wrap("refs init: write helm", dockerr.ErrIOError, err)
	}
	return nil
}

// ListCourses returns the names of all courses (files at depth 1 under the
// courses directory).
func (s *Store) ListCourses() ([]string, error) {
	entries, err := os.ReadDir(s.coursesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, dockerr.Wrap("list courses", dockerr.ErrIOError, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CurrentCourse reads helm and returns the course name it links to.
func (s *Store) CurrentCourse() (string, error) {
	data, err := os.ReadFile(s.helmPath())
	if err != nil {
		return "", dockerr.Wrap("current course: read helm", dockerr.ErrIOError, err)
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, helmLinkPrefix) {
		return "", dockerr.Wrap("current course", dockerr.ErrHelmMalformed, nil)
	}
	coursePath := strings.TrimPrefix(content, helmLinkPrefix)
	coursePath = strings.TrimSpace(coursePath)
	if coursePath == "" {
		return "", dockerr.Wrap("current course", dockerr.ErrHelmMalformed, nil)
	}
	parts := strings.Split(coursePath, "/")
	name := parts[len(parts)-1]
	if name == "" {
		return "", dockerr.Wrap("current course", dockerr.ErrHelmMalformed, nil)
	}
	return name, nil
}

// LatestStarlog resolves helm -> course file -> trimmed hash. It fails with
// dockerr.ErrNoStarlogYet if the course file is empty, and
// dockerr.ErrCourseNotFound if helm names a course with no ref file.
func (s *Store) LatestStarlog() (object.Hash, error) {
	name, err := s.CurrentCourse()
	if err != nil {
		return "", err
	}
	return s.CourseHead(name)
}

// CourseHead reads the starlog hash recorded for the named course.
func (s *Store) CourseHead(name string) (object.Hash, error) {
	op := fmt.Sprintf("course %q", name)
	data, err := os.ReadFile(s.coursePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", dockerr.Wrap(op, dockerr.ErrCourseNotFound, nil)
		}
		return "", dockerr.Wrap(op, dockerr.ErrIOError, err)
	}
	hash := strings.TrimSpace(string(data))
	if hash == "" {
		return "", dockerr.Wrap(op, dockerr.ErrNoStarlogYet, nil)
	}
	return object.Hash(hash), nil
}

// CreateCourse writes the current latest starlog hash into a new course
// file. It fails if the course already exists or the current head cannot
// be resolved (malformed helm, missing course file) — a fresh course always
// inherits the current head (spec.md §8). When the current course has no
// starlog yet, the new course file is created empty.
func (s *Store) CreateCourse(name string) error {
	if err := validateCourseName(name); err != nil {
		return err
	}
	op := fmt.Sprintf("create course %q", name)
	path := s.coursePath(name)
	if _, err := os.Stat(path); err == nil {
		return dockerr.Wrap(op, nil, fmt.Errorf("already exists"))
	}

	head, err := s.LatestStarlog()
	if err != nil {
		// A brand-new repository has no starlog yet; that's a legitimate
		// starting point for a course (empty ref file), everything else
		// (malformed helm, missing course file) is fatal.
		if !isNoStarlogYet(err) {
			return dockerr.Wrap(op, nil, err)
		}
		head = ""
	}

	if err := os.WriteFile(path, []byte(head), 0o644); err != nil {
		return dockerr.Wrap(op, dockerr.ErrIOError, err)
	}
	return nil
}

func isNoStarlogYet(err error) bool {
	return errors.Is(err, dockerr.ErrNoStarlogYet)
}

// DeleteCourse removes the named course's ref file. It fails with
// dockerr.ErrRefReserved for "core" and dockerr.ErrRefInUse for the
// currently active course.
func (s *Store) DeleteCourse(name string) error {
	op := fmt.Sprintf("delete course %q", name)
	if name == CoreCourse {
		return dockerr.Wrap(op, dockerr.ErrRefReserved, nil)
	}
	current, err := s.CurrentCourse()
	if err != nil {
		return dockerr.Wrap(op, nil, err)
	}
	if current == name {
		return dockerr.Wrap(op, dockerr.ErrRefInUse, nil)
	}
	path := s.coursePath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return dockerr.Wrap(op, dockerr.ErrCourseNotFound, nil)
		}
		return dockerr.Wrap(op, dockerr.ErrIOError, err)
	}
	return nil
}

// SetCourseHead writes hash as the named course's latest starlog.
func (s *Store) SetCourseHead(name string, hash object.Hash) error {
	if err := validateCourseName(name); err != nil {
		return err
	}
	if err := os.WriteFile(s.coursePath(name), []byte(hash), 0o644); err != nil {
		return dockerr.Wrap(fmt.Sprintf("set course head %q", name), dockerr.ErrIOError, err)
	}
	return nil
}

// Warp points helm at the named course. It fails if the course does not
// exist (spec.md §3, Invariant 4: helm never points at a non-existent
// course).
func (s *Store) Warp(name string) error {
	op := fmt.Sprintf("warp to %q", name)
	if _, err := os.Stat(s.coursePath(name)); err != nil {
		return dockerr.Wrap(op, dockerr.ErrCourseNotFound, nil)
	}
	content := helmLinkPrefix + "links/helm/" + name + "\n"
	if err := os.WriteFile(s.helmPath(), []byte(content), 0o644); err != nil {
		return dockerr.Wrap(op, dockerr.ErrIOError, err)
	}
	return nil
}

// ListCoursesWithCurrent returns every course name and the name of the
// currently active one in a single call — a convenience supplementing
// spec.md's separate list_courses()/current_course(), grounded on the Rust
// original's Courses::get_courses_and_current.
func (s *Store) ListCoursesWithCurrent() ([]string, string, error) {
	courses, err := s.ListCourses()
	if err != nil {
		return nil, "", err
	}
	current, err := s.CurrentCourse()
	if err != nil {
		return nil, "", err
	}
	return courses, current, nil
}

func validateCourseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("course name must not be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("course name %q must not contain path separators", name)
	}
	return nil
}
