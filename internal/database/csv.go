package database

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lotto-analyzer/internal/logger"
)

// 每行字段数：日期 + 5 个主号码 + 2 个幸运星
const recordFields = 1 + 5 + 2

// Fetcher 远程数据源
type Fetcher interface {
	FetchCSV(ctx context.Context, url string) ([]byte, error)
}

// Load 按数据源类型加载开奖历史，http(s) 地址走 fetcher，其余视为本地文件
func Load(ctx context.Context, source string, fetcher Fetcher) (DrawHistory, error) {
	if isURL(source) {
		if fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", source)
		}
		body, err := fetcher.FetchCSV(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
		}
		return LoadCSV(bytes.NewReader(body))
	}
	return LoadFile(source)
}

// LoadFile 从本地 CSV 文件加载
func LoadFile(path string) (DrawHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	history, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debugf("Loaded %d draws from %s", len(history), path)
	return history, nil
}

// LoadCSV 解析 CSV：一行表头，之后每行一期
// 只校验形状（字段数、正整数），不校验号码范围与重复
func LoadCSV(r io.Reader) (DrawHistory, error) {
	reader := csv.NewReader(r)
	// 字段数由下面自行校验，便于给出行号
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRecord, err)
	}

	var history DrawHistory
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}

		line, _ := reader.FieldPos(0)
		draw, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, line, err)
		}
		history = append(history, draw)
	}

	if len(history) == 0 {
		return nil, ErrEmptyDataset
	}
	return history, nil
}

func parseRecord(record []string) (Draw, error) {
	if len(record) != recordFields {
		return Draw{}, fmt.Errorf("expected %d fields, got %d", recordFields, len(record))
	}

	var nums [recordFields - 1]int
	for i, field := range record[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return Draw{}, fmt.Errorf("field %d: %q is not an integer", i+2, field)
		}
		if n <= 0 {
			return Draw{}, fmt.Errorf("field %d: %d is not positive", i+2, n)
		}
		nums[i] = n
	}

	var d Draw
	d.Date = CleanDate(record[0])
	copy(d.Main[:], nums[:5])
	copy(d.Bonus[:], nums[5:])
	return d, nil
}

// CleanDate 去掉抓取时残留的 .htm/.html 后缀
func CleanDate(s string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range []string{".html", ".htm"} {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
