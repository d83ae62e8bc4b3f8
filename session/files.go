package session

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultTimePattern matches HH_MM_SS recording folders.
const DefaultTimePattern = `[0-9]{2}_[0-9]{2}_[0-9]{2}`

// ErrTimeMismatch is returned when not every file has exactly one
// matching time folder.
var ErrTimeMismatch = errors.New("session: files and time folders do not pair up")

// RecordTimes lists files with extension ext below folder, sorted by
// path, together with the time string taken from the one path component
// that starts with a match of pattern. Files without exactly one such
// component get an empty time.
func RecordTimes(folder, ext, pattern string) ([]string, []string, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, nil, fmt.Errorf("time pattern: %w", err)
	}

	suffix := "." + strings.TrimLeft(ext, "*.")

	var files []string

	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Strings(files)

	times := make([]string, len(files))
	for i, f := range files {
		var found []string

		for _, part := range strings.Split(filepath.ToSlash(f), "/") {
			if m := re.FindString(part); m != "" {
				found = append(found, m)
			}
		}

		if len(found) == 1 {
			times[i] = found[0]
		}
	}

	return files, times, nil
}

// PrependTime renames (or copies, when copyFiles is set) every file found
// by RecordTimes to "<time>_<name>" in the same folder. It returns the
// number of files written.
func PrependTime(folder, ext, pattern string, copyFiles bool, opts ...Option) (int, error) {
	o := applyOptions(opts)

	files, times, err := RecordTimes(folder, ext, pattern)
	if err != nil {
		return 0, err
	}

	for i, t := range times {
		if t == "" {
			return 0, fmt.Errorf("%w: %s", ErrTimeMismatch, files[i])
		}
	}

	done := 0

	for i, f := range files {
		target := filepath.Join(filepath.Dir(f), times[i]+"_"+filepath.Base(f))

		if copyFiles {
			err = copyFile(f, target)
		} else {
			err = os.Rename(f, target)
		}

		if err != nil {
			return done, fmt.Errorf("%s -> %s: %w", f, target, err)
		}

		done++

		o.logger.Debug("prepended time", zap.String("from", f), zap.String("to", target), zap.Bool("copy", copyFiles))
	}

	o.logger.Info("files renamed", zap.Int("count", done), zap.Bool("copy", copyFiles))

	return done, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
