package release

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Artifact is the archive produced for one platform.
type Artifact struct {
	Platform string
	Path     string
	Size     int64
	SHA256   string
}

// Packager archives a populated staging directory.
type Packager interface {
	Package(p *Platform, stagingDir string) (*Artifact, error)
}

// ArchivePackager writes {app}-{platform}.zip or .tar.xz next to the staging
// directory. The staging directory is left untouched.
type ArchivePackager struct {
	AppName string
	DistDir string
}

func (a *ArchivePackager) Package(p *Platform, stagingDir string) (*Artifact, error) {
	path := filepath.Join(a.DistDir, p.ArchiveName(a.AppName))

	if err := writeArchive(p.Format, path, stagingDir); err != nil {
		return nil, &PackageError{Platform: p.Name, Err: err}
	}

	size, digest, err := fileDigest(path)
	if err != nil {
		return nil, &PackageError{Platform: p.Name, Err: err}
	}

	return &Artifact{
		Platform: p.Name,
		Path:     path,
		Size:     size,
		SHA256:   digest,
	}, nil
}

// writeArchive writes to a temporary file first so an existing archive is
// only replaced by a complete one.
func writeArchive(format ArchiveFormat, path, dir string) (err error) {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	switch format {
	case FormatZip:
		err = writeZip(f, dir)
	case FormatTarXz:
		err = writeTarXz(f, dir)
	default:
		err = errors.Errorf("unknown archive format %v", format)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// walkStaging calls fn for dir and everything below it with the archive name
// rooted at dir's base name.
func walkStaging(dir string, fn func(path, name string, info fs.FileInfo) error) error {
	prefix := filepath.Base(dir)

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(filepath.Join(prefix, rel))
		if err := checkArchivePath(name); err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		return fn(path, name, info)
	})
}

func writeZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	err := walkStaging(dir, func(path, name string, info fs.FileInfo) error {
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		if info.IsDir() {
			header.Name = name + "/"
			_, err = zw.CreateHeader(header)
			return err
		}

		header.Name = name
		header.Method = zip.Deflate

		out, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		return copyFile(out, path)
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

func writeTarXz(w io.Writer, dir string) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(xw)

	err = walkStaging(dir, func(path, name string, info fs.FileInfo) error {
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		header.Name = name
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return copyFile(tw, path)
	})
	if err != nil {
		tw.Close()
		xw.Close()
		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}

	return xw.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

func fileDigest(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}

	return n, hex.EncodeToString(h.Sum(nil)), nil
}
