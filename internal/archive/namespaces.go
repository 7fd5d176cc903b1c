package archive

import (
	"archive/zip"
	"bufio"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// NamespaceIDs reads namespaces.ini and returns the namespace ids
// listed in its [Namespaces] section. The member read is the first one
// enumerated that is patcherPath/tslpatchdata/namespaces.ini or whose
// base name is namespaces.ini, so a namespaces.ini outside patcherPath
// is accepted too. One `Patcher` Instruction per id is generated
// downstream (spec §4.5).
func (i *Inspector) NamespaceIDs(archivePath, patcherPath string) ([]string, error) {
	target := strings.ToLower(strings.TrimPrefix(patcherPath+"/tslpatchdata/namespaces.ini", "/"))
	lower := strings.ToLower(archivePath)

	var content io.ReadCloser
	var err error
	switch {
	case strings.HasSuffix(lower, ".zip"):
		content, err = openZipMember(archivePath, target)
	case strings.HasSuffix(lower, ".rar"):
		content, err = openRarMember(archivePath, target)
	case strings.HasSuffix(lower, ".7z"):
		content, err = openSevenZipMember(archivePath, target)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}
	defer content.Close()
	return parseNamespaceIDs(content), nil
}

func memberMatches(name, target string) bool {
	return strings.EqualFold(strings.ReplaceAll(name, `\`, "/"), target) ||
		strings.HasSuffix(strings.ToLower(strings.ReplaceAll(name, `\`, "/")), "/namespaces.ini") ||
		strings.EqualFold(name, "namespaces.ini")
}

func openZipMember(path, target string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if memberMatches(f.Name, target) {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, err
			}
			return &zipMemberCloser{rc, r}, nil
		}
	}
	r.Close()
	return nil, nil
}

type zipMemberCloser struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipMemberCloser) Close() error {
	z.ReadCloser.Close()
	return z.archive.Close()
}

func openRarMember(path, target string) (io.ReadCloser, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, err
	}
	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			rc.Close()
			return nil, err
		}
		if memberMatches(hdr.Name, target) {
			buf, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, err
			}
			return io.NopCloser(strings.NewReader(string(buf))), nil
		}
	}
	rc.Close()
	return nil, nil
}

func openSevenZipMember(path, target string) (io.ReadCloser, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if memberMatches(f.Name, target) {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, err
			}
			return &sevenZipMemberCloser{rc, r}, nil
		}
	}
	r.Close()
	return nil, nil
}

type sevenZipMemberCloser struct {
	io.ReadCloser
	archive *sevenzip.ReadCloser
}

func (z *sevenZipMemberCloser) Close() error {
	z.ReadCloser.Close()
	return z.archive.Close()
}

// parseNamespaceIDs extracts the values of the [Namespaces] section of
// a TSLPatcher-format ini. Each key under that section (IDn=value)
// names one installable namespace.
func parseNamespaceIDs(r io.Reader) []string {
	var ids []string
	inSection := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inSection = strings.EqualFold(strings.Trim(line, "[]"), "Namespaces")
			continue
		}
		if !inSection {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		ids = append(ids, strings.TrimSpace(parts[1]))
	}
	return ids
}
