package sparse

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// ReadOptions controls how a libsvm-format file is turned into a Dataset.
type ReadOptions struct {
	// Source names the input in error messages.
	Source string
	// Bias >= 0 appends a constant bias feature to every instance.
	Bias float64
	// MaxIndex > 0 drops features beyond it, for test data scored by a
	// model trained on MaxIndex features.
	MaxIndex int
}

// ReadLibSVM parses "label idx:val idx:val ..." lines, one instance per line.
// Any malformed line aborts parsing with a ParseError carrying its line number.
func ReadLibSVM(r io.Reader, opts ReadOptions) (*Dataset, error) {
	b := NewBuilder(opts.Bias)
	if opts.MaxIndex > 0 {
		b.WithMaxIndex(opts.MaxIndex)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)

	line := 0
	for scanner.Scan() {
		line++
		label, features, reason := ParseLine(scanner.Text())
		if reason != "" {
			return nil, errors.NewParseError(opts.Source, line, reason)
		}
		if err := b.Add(label, features); err != nil {
			return nil, errors.NewParseError(opts.Source, line, err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", opts.Source)
	}
	return b.Build()
}

// ReadLibSVMFile opens path and parses it with ReadLibSVM.
func ReadLibSVMFile(path string, opts ReadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open input file %s", path)
	}
	defer f.Close()

	if opts.Source == "" {
		opts.Source = path
	}
	return ReadLibSVM(f, opts)
}

// ParseLine parses one libsvm-format line. reason is non-empty when the line
// is malformed.
func ParseLine(text string) (label float64, features []Feature, reason string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, nil, "empty line"
	}

	label, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, nil, "invalid label " + strconv.Quote(fields[0])
	}

	features = make([]Feature, 0, len(fields)-1)
	prev := 0
	for _, tok := range fields[1:] {
		idxStr, valStr, ok := strings.Cut(tok, ":")
		if !ok {
			return 0, nil, "expected index:value, got " + strconv.Quote(tok)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return 0, nil, "invalid feature index " + strconv.Quote(idxStr)
		}
		if idx <= prev {
			return 0, nil, "feature indices must be positive and strictly increasing"
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return 0, nil, "invalid feature value " + strconv.Quote(valStr)
		}
		features = append(features, Feature{Index: idx, Value: val})
		prev = idx
	}
	return label, features, ""
}
