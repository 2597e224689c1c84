package crawl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goeval "github.com/edisonguo/govaluate"

	"github.com/sansa-eo/spot-eo3/utils"
)

// DefaultGlob selects the PCIDSK files a SPOT delivery is made of.
const DefaultGlob = "*.pix"

const readDirBatch = 256

// Scanner lists the files directly inside one directory whose names
// match a glob and, optionally, a boolean pattern expression. Entries
// are read from the directory in batches as Scan is called, in the
// order the filesystem returns them.
type Scanner struct {
	root    string
	glob    string
	pattern *goeval.EvaluableExpression
	dir     *os.File
	batch   []os.DirEntry
	path    string
	err     error
	done    bool
}

// NewScanner opens root for scanning. pattern may be empty; otherwise
// it is a govaluate expression over the variables `path` and `name`,
// e.g. `name =~ '^S6-'`.
func NewScanner(root string, glob string, pattern string) (*Scanner, error) {
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, fmt.Errorf("invalid glob %q: %v", glob, err)
	}

	expr, err := ParsePatternExpression(pattern)
	if err != nil {
		return nil, err
	}

	fInfo, err := os.Stat(root)
	if err != nil {
		return nil, utils.NewError(utils.KindDirectory, root, err)
	}
	if !fInfo.IsDir() {
		return nil, utils.Errorf(utils.KindDirectory, root, "not a directory")
	}

	dir, err := os.Open(root)
	if err != nil {
		return nil, utils.NewError(utils.KindDirectory, root, err)
	}

	return &Scanner{
		root:    root,
		glob:    glob,
		pattern: expr,
		dir:     dir,
	}, nil
}

// ParsePatternExpression compiles a file filter expression. An empty
// pattern yields a nil expression, which matches everything.
func ParsePatternExpression(pattern string) (*goeval.EvaluableExpression, error) {
	if len(strings.TrimSpace(pattern)) == 0 {
		return nil, nil
	}

	expr, err := goeval.NewEvaluableExpression(pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern expression: %v", err)
	}

	validVariables := map[string]struct{}{"path": {}, "name": {}}
	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
			}
			if _, found := validVariables[varName]; !found {
				return nil, fmt.Errorf("variable %v is not supported. Valid variables are path and name", varName)
			}
		}
	}
	return expr, nil
}

// Scan advances to the next matching file. It returns false once the
// directory is exhausted or an error occurred; check Err afterwards.
func (s *Scanner) Scan() bool {
	for !s.done {
		if len(s.batch) == 0 {
			entries, err := s.dir.ReadDir(readDirBatch)
			s.batch = entries
			if err == io.EOF {
				s.finish(nil)
				return false
			}
			if err != nil {
				s.finish(utils.NewError(utils.KindDirectory, s.root, err))
				return false
			}
			continue
		}

		entry := s.batch[0]
		s.batch = s.batch[1:]
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if ok, _ := filepath.Match(s.glob, name); !ok {
			continue
		}

		filePath := filepath.Join(s.root, name)
		if s.pattern != nil {
			ok, err := s.evaluatePatternExpression(filePath, name)
			if err != nil {
				s.finish(err)
				return false
			}
			if !ok {
				continue
			}
		}

		s.path = filePath
		return true
	}
	return false
}

func (s *Scanner) Path() string {
	return s.path
}

func (s *Scanner) Err() error {
	return s.err
}

// Close releases the directory handle. It is safe to call more than once.
func (s *Scanner) Close() error {
	if s.dir == nil {
		return nil
	}
	err := s.dir.Close()
	s.dir = nil
	s.done = true
	return err
}

func (s *Scanner) finish(err error) {
	s.err = err
	s.path = ""
	s.Close()
}

func (s *Scanner) evaluatePatternExpression(filePath string, name string) (bool, error) {
	parameters := map[string]interface{}{"path": filePath, "name": name}
	result, err := s.pattern.Evaluate(parameters)
	if err != nil {
		return false, fmt.Errorf("pattern expression: %v", err)
	}

	val, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("pattern expression: result '%v' is not boolean", result)
	}
	return val, nil
}

// List drains a scanner over root into a slice.
func List(root string, glob string, pattern string) ([]string, error) {
	s, err := NewScanner(root, glob, pattern)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var files []string
	for s.Scan() {
		files = append(files, s.Path())
	}
	return files, s.Err()
}
