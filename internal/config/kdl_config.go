package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .kotormodsync.kdl file
// under projectRoot. A missing file is not an error: it returns a nil
// *Config so the caller keeps its defaults.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".kotormodsync.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .kotormodsync.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.ModDirectory != "" && !filepath.IsAbs(cfg.ModDirectory) {
		cfg.ModDirectory = filepath.Clean(filepath.Join(projectRoot, cfg.ModDirectory))
	}
	if cfg.KotorDirectory != "" && !filepath.IsAbs(cfg.KotorDirectory) {
		cfg.KotorDirectory = filepath.Clean(filepath.Join(projectRoot, cfg.KotorDirectory))
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Clean(filepath.Join(projectRoot, cfg.Cache.Dir))
	}

	return cfg, nil
}

// parseKDL parses the textual KDL document into a Config whose fields
// are all left at their zero value unless the document sets them;
// mergeConfigs relies on that to decide what the overlay actually
// touched.
func parseKDL(content string) (*Config, error) {
	cfg := &Config{}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "mod_directory":
			if s, ok := firstStringArg(n); ok {
				cfg.ModDirectory = s
			}
		case "kotor_directory":
			if s, ok := firstStringArg(n); ok {
				cfg.KotorDirectory = s
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Cache.Dir = s
					}
				case "max_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxBytes = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Cache.MaxBytes = sz
						}
					}
				case "stale_file_age_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.StaleFileAgeHours = v
					}
				case "never_verified_max_age_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.NeverVerifiedMaxAgeHours = v
					}
				case "verified_downgrade_after_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.VerifiedDowngradeAfterHours = v
					}
				case "observed_once_downgrade_at_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.ObservedOnceDowngradeAtHours = v
					}
				case "watch":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Cache.WatchEnabled = b
					}
				}
			}
		case "parallel_file_workers":
			if v, ok := firstIntArg(n); ok {
				cfg.ParallelFileWorkers = v
			}
		case "verbose":
			if b, ok := firstBoolArg(n); ok {
				cfg.Verbose = b
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// parseSize handles size strings like "10MB", "500KB", "20GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
