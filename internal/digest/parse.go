package digest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a parsed outbox digest: the frontmatter the email collaborator
// uses for subject and threading, plus the rendered body it sends.
type File struct {
	Title      string `yaml:"title"`
	Date       string `yaml:"date"`
	SnapshotID string `yaml:"snapshot_id"`
	Items      int    `yaml:"items"`

	Body string `yaml:"-"`
}

// ParseFile reads a digest back from the outbox. Frontmatter sits between
// two "---" lines at the top of the file; a file without a snapshot_id is
// not a digest and is rejected, since replies need the snapshot to target.
func ParseFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	peek, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}
	if string(peek) != "---" {
		return File{}, fmt.Errorf("%s: no digest frontmatter", path)
	}

	if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}
	var fmBuf strings.Builder
	for {
		l, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return File{}, err
		}
		if strings.TrimSpace(l) == "---" {
			break
		}
		fmBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
	}
	var bodyBuf strings.Builder
	for {
		l, err := br.ReadString('\n')
		bodyBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return File{}, err
		}
	}

	var d File
	if err := yaml.Unmarshal([]byte(fmBuf.String()), &d); err != nil {
		return File{}, fmt.Errorf("%s: bad frontmatter: %w", path, err)
	}
	if d.SnapshotID == "" {
		return File{}, fmt.Errorf("%s: frontmatter has no snapshot_id", path)
	}
	d.Body = strings.TrimLeft(bodyBuf.String(), "\n")
	return d, nil
}
