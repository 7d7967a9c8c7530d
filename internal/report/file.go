package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lotto-analyzer/internal/config"
	"lotto-analyzer/internal/logger"
)

// WriteFileAtomic 先写临时文件再改名，失败时不留下半成品
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmpName, err)
	}
	return nil
}

// Publish 按配置写出全部报告文件，返回已写出的路径
// 所有内容先在内存中渲染完成，任何一步失败都不会写出文件
func Publish(cfg config.Report, s *Snapshot) ([]string, error) {
	var text bytes.Buffer
	if err := WriteText(&text, s); err != nil {
		return nil, fmt.Errorf("failed to render text report: %w", err)
	}

	chartsHref := ""
	if cfg.ChartsPath != "" && cfg.HTMLPath != "" {
		rel, err := filepath.Rel(filepath.Dir(cfg.HTMLPath), cfg.ChartsPath)
		if err == nil {
			chartsHref = filepath.ToSlash(rel)
		}
	}

	outputs := []struct {
		path   string
		render func(w io.Writer) error
	}{
		{cfg.TextPath, func(w io.Writer) error {
			_, err := w.Write(text.Bytes())
			return err
		}},
		{cfg.HTMLPath, func(w io.Writer) error { return WriteHTML(w, s, text.String(), chartsHref) }},
		{cfg.ChartsPath, func(w io.Writer) error { return RenderCharts(w, s, DefaultChartConfig()) }},
		{cfg.JSONPath, func(w io.Writer) error { return WriteJSON(w, s) }},
	}

	rendered := make([][]byte, len(outputs))
	for i, out := range outputs {
		if out.path == "" {
			continue
		}
		var buf bytes.Buffer
		if err := out.render(&buf); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", out.path, err)
		}
		rendered[i] = buf.Bytes()
	}

	var written []string
	for i, out := range outputs {
		if out.path == "" {
			continue
		}
		data := rendered[i]
		if err := WriteFileAtomic(out.path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return written, err
		}
		written = append(written, out.path)
		logger.Debugf("Report written: %s (%d bytes)", out.path, len(data))
	}

	return written, nil
}
