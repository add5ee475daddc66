// Command staticlint runs the project's static checks as a single
// multichecker binary.
//
// Which analyzers run is decided by config.json, read from the directory of
// the binary or from the file named by STATICLINT_CONFIG:
//
//	{
//	  "Analyzers": ["nostdlog", "nilerr", "lostcancel"],
//	  "Staticcheck": ["SA1019", "SA4006"]
//	}
//
// An empty Analyzers list enables every built-in analyzer. Unknown names are
// an error, so a typo in the config does not silently turn a check off.
//
// Build it next to its config.json and run it as `staticlint ./...` from the
// module root.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/usersweb/cmd/staticlint/nostdlog"
)

const (
	configFileName = "config.json"
	configEnv      = "STATICLINT_CONFIG"
)

// ConfigData is the layout of config.json.
type ConfigData struct {
	Analyzers   []string
	Staticcheck []string
}

var builtinAnalyzers = []*analysis.Analyzer{
	copylock.Analyzer, // the stores embed a sync.RWMutex
	errorsas.Analyzer,
	httpresponse.Analyzer, // resty and net/http clients in tests
	loopclosure.Analyzer,
	lostcancel.Analyzer, // shutdown and ping timeouts
	printf.Analyzer,     // zap's printf-style helpers
	structtag.Analyzer,  // env, json and validate tags
	unmarshal.Analyzer,
	unreachable.Analyzer,

	ineffassign.Analyzer,
	nilerr.Analyzer,

	nostdlog.Analyzer,
}

func configPath() (string, error) {
	if path := os.Getenv(configEnv); path != "" {
		return path, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.Join(filepath.Dir(executable), configFileName), nil
}

func loadConfig(path string) (ConfigData, error) {
	var cfg ConfigData

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// selectAnalyzers resolves the names of cfg against the built-in analyzers
// and the staticcheck suite.
func selectAnalyzers(cfg ConfigData) ([]*analysis.Analyzer, error) {
	byName := make(map[string]*analysis.Analyzer, len(builtinAnalyzers))
	for _, a := range builtinAnalyzers {
		byName[a.Name] = a
	}

	var result []*analysis.Analyzer
	if len(cfg.Analyzers) == 0 {
		result = append(result, builtinAnalyzers...)
	}
	for _, name := range cfg.Analyzers {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown analyzer %q, known: %v", name, sortedNames(byName))
		}
		result = append(result, a)
	}

	staticcheckByName := make(map[string]*analysis.Analyzer, len(staticcheck.Analyzers))
	for _, v := range staticcheck.Analyzers {
		staticcheckByName[v.Analyzer.Name] = v.Analyzer
	}
	for _, name := range cfg.Staticcheck {
		a, ok := staticcheckByName[name]
		if !ok {
			return nil, fmt.Errorf("unknown staticcheck analyzer %q", name)
		}
		result = append(result, a)
	}

	return result, nil
}

func sortedNames(byName map[string]*analysis.Analyzer) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func main() {
	path, err := configPath()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		log.Fatal(err)
	}

	analyzers, err := selectAnalyzers(cfg)
	if err != nil {
		log.Fatal(err)
	}

	multichecker.Main(analyzers...)
}
