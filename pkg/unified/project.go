package unified

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/rgd/pkg/config"
	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/safeio"
	"github.com/fulmenhq/rgd/pkg/spec"
)

// standardExclude keeps generated documents out of the standard scan. Only
// domain bundle names are matched so authored *_spec modules stay in.
var standardExclude = []string{"**/*unified_spec*", "**/[0-9][0-9]_spec.json"}

// Project locates the spec and standard trees of one robot specification.
type Project struct {
	Root        string
	SpecDir     string
	StandardDir string

	cfg     *config.Config
	specRel string
	Builder *Builder
}

// OpenProject resolves the spec tree under root. When root itself is the spec
// directory (its base name equals spec.dir) it is used directly.
func OpenProject(root string, cfg *config.Config) (*Project, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Project{
		Root:        root,
		SpecDir:     cfg.SpecDir(root),
		StandardDir: cfg.StandardDir(root),
		cfg:         cfg,
		specRel:     cfg.Spec.Dir,
		Builder:     NewBuilder(cfg),
	}
	if !safeio.IsDir(p.SpecDir) {
		abs, err := filepath.Abs(root)
		if err == nil && filepath.Base(abs) == filepath.Base(cfg.Spec.Dir) && safeio.IsDir(root) {
			p.SpecDir = root
			p.specRel = "."
		} else {
			return nil, fmt.Errorf("spec directory not found at %s: %w", p.SpecDir, os.ErrNotExist)
		}
	}
	return p, nil
}

// Config returns the configuration the project was opened with.
func (p *Project) Config() *config.Config { return p.cfg }

// BenchmarkDir is where full-pipeline snapshots are stored.
func (p *Project) BenchmarkDir() string {
	return filepath.Join(p.StandardDir, p.cfg.Standard.Benchmarks)
}

// twinFiles names the unified documents called base (and the configured base
// name) at the top of a tree. An empty base means the configured name.
func (p *Project) twinFiles(base, ext string) []string {
	names := []string{p.cfg.Unified.BaseName + ext}
	if base != "" && base != p.cfg.Unified.BaseName {
		names = append(names, base+ext)
	}
	return names
}

// ScanSpec reads the authored JSONC tree, skipping the human twin named base.
func (p *Project) ScanSpec(base string) (*spec.ScanResult, error) {
	return spec.Scan(spec.ScanOptions{
		Root:      p.Root,
		Dir:       p.specRel,
		Extension: p.cfg.Spec.Extension,
		Exclude:   p.cfg.Spec.Exclude,
		Skip:      p.twinFiles(base, p.cfg.Spec.Extension),
	})
}

// ScanStandard reads the strict JSON mirror, skipping unified documents,
// domain bundles and benchmark snapshots.
func (p *Project) ScanStandard(base string) (*spec.ScanResult, error) {
	rel, err := filepath.Rel(p.Root, p.StandardDir)
	if err != nil {
		rel = p.cfg.Standard.Dir
	}
	exclude := append([]string{filepath.ToSlash(filepath.Join(p.cfg.Standard.Benchmarks, "**"))}, standardExclude...)
	return spec.Scan(spec.ScanOptions{
		Root:      p.Root,
		Dir:       rel,
		Extension: ".json",
		Exclude:   exclude,
		Skip:      p.twinFiles(base, ".json"),
		Strict:    true,
	})
}

// Artifacts lists the files a build step wrote.
type Artifacts []string

// WriteHuman writes a human twin as dir/base.jsonc.
func WriteHuman(dir, base, text string) (string, error) {
	path := filepath.Join(dir, base+".jsonc")
	if err := safeio.WriteFile(path, []byte(text)); err != nil {
		return "", fmt.Errorf("write human twin: %w", err)
	}
	return path, nil
}

// WriteMachine writes a machine twin as dir/base.json.
func WriteMachine(dir, base string, doc *Document) (string, error) {
	data, err := doc.Marshal()
	if err != nil {
		return "", fmt.Errorf("encode machine twin: %w", err)
	}
	path := filepath.Join(dir, base+".json")
	if err := safeio.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("write machine twin: %w", err)
	}
	return path, nil
}

// Compile writes the whole-corpus twins (base.jsonc and base.json) into the
// spec directory.
func (p *Project) Compile(records []spec.Record, base string) (Artifacts, error) {
	if err := safeio.ValidateBaseName(base); err != nil {
		return nil, err
	}
	jsonPath, err := WriteMachine(p.SpecDir, base, p.Builder.Machine(records, TypeMachine, NoteMachine))
	if err != nil {
		return nil, err
	}
	logger.Success("Machine twin generated", logger.String("path", jsonPath))

	jsoncPath, err := WriteHuman(p.SpecDir, base, p.Builder.Human(records))
	if err != nil {
		return nil, err
	}
	logger.Success("Human twin generated", logger.String("path", jsoncPath))
	return Artifacts{jsonPath, jsoncPath}, nil
}

// CompileDomains writes bundles for the given canonical domains, or for every
// indexed domain when domains is empty. Human bundles go to the spec
// directory and machine bundles to the standard directory.
func (p *Project) CompileDomains(ix *spec.Index, domains []string) (Artifacts, error) {
	if len(domains) == 0 {
		domains = ix.Names()
	}
	var out Artifacts
	for _, d := range domains {
		records := ix.Records(d)
		if len(records) == 0 {
			logger.Warn("No records found for domain", logger.String("domain", d))
			continue
		}
		base := spec.Prefix(d) + "_spec"

		jsonPath, err := WriteMachine(p.StandardDir, base, p.Builder.DomainMachine(d, records))
		if err != nil {
			return out, err
		}
		logger.Success("Machine bundle generated", logger.String("domain", d), logger.String("path", jsonPath))

		jsoncPath, err := WriteHuman(p.SpecDir, base, p.Builder.DomainHuman(d, records))
		if err != nil {
			return out, err
		}
		logger.Success("Human bundle generated", logger.String("domain", d), logger.String("path", jsoncPath))
		out = append(out, jsonPath, jsoncPath)
	}
	return out, nil
}

// Mirror writes every scanned record as 2-space JSON under the standard
// directory, keeping the folder layout and swapping the extension.
func (p *Project) Mirror(records []spec.Record) (Artifacts, error) {
	var out Artifacts
	for _, r := range records {
		src := filepath.Join(p.Root, filepath.FromSlash(r.Path))
		rel, err := filepath.Rel(p.SpecDir, src)
		if err != nil || strings.HasPrefix(rel, "..") {
			return out, fmt.Errorf("record %s is outside %s", r.Path, p.SpecDir)
		}
		target := filepath.Join(p.StandardDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".json")

		data, err := jsonc.Marshal(r.Content)
		if err != nil {
			return out, fmt.Errorf("encode %s: %w", r.Path, err)
		}
		if err := safeio.WriteFile(target, data); err != nil {
			return out, err
		}
		out = append(out, target)
	}
	logger.Success("Standard mirror updated", logger.String("dir", p.StandardDir), logger.Int("files", len(out)))
	return out, nil
}

// FullPipeline runs the canonical release build:
// mirror spec to standard, human twin into spec, machine twin from the
// standard mirror, benchmark snapshots, then every domain bundle.
// Files skipped by either scan are returned alongside the artifacts.
func (p *Project) FullPipeline(base string) (Artifacts, []*spec.ParseError, error) {
	if err := safeio.ValidateBaseName(base); err != nil {
		return nil, nil, err
	}
	scanned, err := p.ScanSpec(base)
	if err != nil {
		return nil, nil, err
	}
	skipped := scanned.Skipped

	out, err := p.Mirror(scanned.Records)
	if err != nil {
		return out, skipped, err
	}

	humanPath, err := WriteHuman(p.SpecDir, base, p.Builder.Human(scanned.Records))
	if err != nil {
		return out, skipped, err
	}
	logger.Success("Human twin generated", logger.String("path", humanPath))
	out = append(out, humanPath)

	std, err := p.ScanStandard(base)
	if err != nil {
		return out, skipped, err
	}
	skipped = append(skipped, std.Skipped...)
	machinePath, err := WriteMachine(p.StandardDir, base, p.Builder.Machine(std.Records, TypeMachineFromStandard, NoteFromStandard))
	if err != nil {
		return out, skipped, err
	}
	logger.Success("Machine twin generated from standard", logger.String("path", machinePath))
	out = append(out, machinePath)

	for _, src := range []string{humanPath, machinePath} {
		dst := filepath.Join(p.BenchmarkDir(), filepath.Base(src))
		if err := safeio.CopyFile(src, dst); err != nil {
			return out, skipped, fmt.Errorf("store benchmark snapshot: %w", err)
		}
		logger.Success("Benchmark snapshot stored", logger.String("path", dst))
		out = append(out, dst)
	}

	bundles, err := p.CompileDomains(spec.BuildIndex(scanned.Records), nil)
	out = append(out, bundles...)
	return out, skipped, err
}

// BuildStandard transpiles src into a fresh dest: files with extension ext
// (".jsonc" when empty) become 2-space JSON, everything else is copied
// verbatim. dest is removed first. Invalid JSONC files are reported and
// skipped.
func BuildStandard(src, dest, ext string) (int, []*spec.ParseError, error) {
	if ext == "" {
		ext = ".jsonc"
	}
	if !safeio.IsDir(src) {
		return 0, nil, fmt.Errorf("source directory %s: %w", src, os.ErrNotExist)
	}
	if err := cleanDir(src, dest); err != nil {
		return 0, nil, err
	}

	var transpiled int
	var failures []*spec.ParseError
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if filepath.Ext(path) != ext {
			return safeio.CopyFile(path, target)
		}

		raw, err := safeio.ReadFileContained(src, path)
		if err != nil {
			return err
		}
		v, err := jsonc.Parse(raw)
		if err != nil {
			perr := &spec.ParseError{Path: filepath.ToSlash(rel), Err: err}
			logger.Error("Invalid JSONC", logger.String("file", perr.Path), logger.Err(err))
			failures = append(failures, perr)
			return nil
		}
		data, err := jsonc.Marshal(v)
		if err != nil {
			return err
		}
		if err := safeio.WriteFile(strings.TrimSuffix(target, ext)+".json", data); err != nil {
			return err
		}
		transpiled++
		return nil
	})
	if err != nil {
		return transpiled, failures, fmt.Errorf("build standard: %w", err)
	}
	logger.Success("Standard build complete", logger.Int("transpiled", transpiled), logger.String("dest", dest))
	return transpiled, failures, nil
}

// cleanDir removes dest unless it is src or contains it.
func cleanDir(src, dest string) error {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(destAbs, srcAbs); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to clean %s: it contains the source %s", dest, src)
	}
	if safeio.Exists(dest) {
		logger.Debug("Cleaning existing standard folder", logger.String("dir", dest))
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("clean %s: %w", dest, err)
		}
	}
	return os.MkdirAll(dest, 0o755)
}
