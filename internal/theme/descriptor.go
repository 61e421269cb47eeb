// Package theme discovers the identity of a theme directory and turns it into
// an isolated, mountable engine inside a host application.
//
// A Descriptor is immutable naming data derived from a directory. A Theme
// wraps a Descriptor and, once bootstrapped, owns a namespace handle and an
// Engine holding the theme's resource search paths.
package theme

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/namespace"
)

var (
	unsafeRun = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRun   = regexp.MustCompile(`-{2,}`)
)

// Slug normalizes a directory name into a URL and identifier safe theme name:
// accents are transliterated, every run of characters other than ASCII
// letters, digits, "_" and "-" becomes a single "-", the result is trimmed of
// "-" and lowercased. Slug(Slug(s)) == Slug(s).
func Slug(raw string) string {
	ascii, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		raw,
	)
	if err != nil {
		ascii = raw
	}
	s := unsafeRun.ReplaceAllString(ascii, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return strings.ToLower(s)
}

// Descriptor identifies one theme directory.
type Descriptor struct {
	path         string
	name         string
	relativePath string
}

// FromDirectory builds a Descriptor for the theme at path. The relative path
// is computed against appRoot once, from absolute paths, so it does not
// depend on the working directory afterwards.
func FromDirectory(path, appRoot string) (*Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, terrors.NewIOError(terrors.ErrCodeScanFailed, "cannot resolve theme path", err).
			WithPath(path)
	}
	base := filepath.Base(abs)
	name := Slug(base)
	if name == "" {
		return nil, &terrors.InvalidThemeNameError{Path: abs, Base: base}
	}

	rel := abs
	if root, err := filepath.Abs(appRoot); err == nil {
		if r, err := filepath.Rel(root, abs); err == nil {
			rel = r
		}
	}

	return &Descriptor{
		path:         abs,
		name:         name,
		relativePath: filepath.ToSlash(rel),
	}, nil
}

// Path returns the absolute theme directory.
func (d *Descriptor) Path() string { return d.path }

// Name returns the theme slug.
func (d *Descriptor) Name() string { return d.name }

// RelativePath returns the theme directory relative to the application root,
// slash separated.
func (d *Descriptor) RelativePath() string { return d.relativePath }

// MountPath returns the router mount point, "/" + Name().
func (d *Descriptor) MountPath() string { return "/" + d.name }

// NamespaceName returns the dotted namespace the theme lives in.
func (d *Descriptor) NamespaceName() string { return namespace.ForTheme(d.name) }

// Join returns an absolute path inside the theme directory.
func (d *Descriptor) Join(elem ...string) string {
	parts := make([]string, 0, len(elem)+1)
	parts = append(parts, d.path)
	for _, e := range elem {
		parts = append(parts, filepath.FromSlash(e))
	}
	return filepath.Join(parts...)
}

// RelativeJoin returns a slash separated path inside the theme, relative to
// the application root.
func (d *Descriptor) RelativeJoin(elem ...string) string {
	parts := make([]string, 0, len(elem)+1)
	parts = append(parts, d.relativePath)
	parts = append(parts, elem...)
	return strings.Join(parts, "/")
}
