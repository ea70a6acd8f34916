// Package fsnode creates and edits files on the target tree.
//
// All operations work on absolute, canonical paths and report failures as
// errors. Configuration files are only ever appended to, line by line.
package fsnode

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/sirupsen/logrus"
)

const (
	DirPerms  os.FileMode = 0755
	FilePerms os.FileMode = 0644
)

// Writer performs filesystem changes. In dry-run mode changes are logged and
// reported as successful.
type Writer struct {
	DryRun bool
	Logger *logrus.Entry
}

func NewWriter(logger *logrus.Entry, dryRun bool) *Writer {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Writer{
		DryRun: dryRun,
		Logger: logger,
	}
}

func validatePath(p string) error {
	if p == "" || p[0] != '/' {
		return fmt.Errorf("path %q must be absolute", p)
	}
	if p != path.Clean(p) {
		return fmt.Errorf("path %q must be canonical", p)
	}
	return nil
}

func (w *Writer) skip(format string, args ...interface{}) bool {
	if !w.DryRun {
		return false
	}
	w.logger().Infof("dry run: skipping: "+format, args...)
	return true
}

func (w *Writer) logger() *logrus.Entry {
	if w.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return w.Logger
}

// CreateDirectory creates dir and any missing parents.
func (w *Writer) CreateDirectory(dir string) error {
	if err := validatePath(dir); err != nil {
		return err
	}
	if w.skip("create directory %s", dir) {
		return nil
	}
	w.logger().Debugf("creating directory %s", dir)
	if err := os.MkdirAll(dir, DirPerms); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// CreateFile creates an empty file, truncating it if it already exists.
func (w *Writer) CreateFile(name string) error {
	if err := validatePath(name); err != nil {
		return err
	}
	if w.skip("create file %s", name) {
		return nil
	}
	w.logger().Debugf("creating file %s", name)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, FilePerms)
	if err != nil {
		return fmt.Errorf("create file %s: %w", name, err)
	}
	return f.Close()
}

// AppendLine appends line and a newline to the file, creating it if needed.
func (w *Writer) AppendLine(name, line string) error {
	if err := validatePath(name); err != nil {
		return err
	}
	if w.skip("append to %s: %s", name, line) {
		return nil
	}
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, FilePerms)
	if err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	if _, err := io.WriteString(f, line+"\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return f.Close()
}

// AppendText appends text to the file as is, creating the file if needed.
func (w *Writer) AppendText(name string, text []byte) error {
	if err := validatePath(name); err != nil {
		return err
	}
	if w.skip("append %d bytes to %s", len(text), name) {
		return nil
	}
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, FilePerms)
	if err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	if _, err := f.Write(text); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return f.Close()
}

// CopyFile copies src over dst.
func (w *Writer) CopyFile(src, dst string) error {
	for _, p := range []string{src, dst} {
		if err := validatePath(p); err != nil {
			return err
		}
	}
	if w.skip("copy %s to %s", src, dst) {
		return nil
	}
	w.logger().Debugf("copying %s to %s", src, dst)
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, FilePerms)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// RemoveFile removes the file name. A file that does not exist is not an
// error.
func (w *Writer) RemoveFile(name string) error {
	if err := validatePath(name); err != nil {
		return err
	}
	if w.skip("remove file %s", name) {
		return nil
	}
	w.logger().Debugf("removing file %s", name)
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file %s: %w", name, err)
	}
	return nil
}

// Exists reports whether p exists.
func Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// IsDir reports whether p exists and is a directory.
func IsDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
