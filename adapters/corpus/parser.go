// Package corpus parses sample corpora captured from sampler implementations.
//
// Two text layouts are supported. Univariate corpora interleave a parameter
// header with a line of comma separated integers:
//
//	mu = 0.5, sigma = 1.7
//	3, -1, 0, 2, -4,
//
// Multivariate corpora hold one comma separated vector per line. All vectors
// are assumed to come from the same centered distribution, and the expected
// standard deviation is estimated as the root mean square of every entry.
package corpus

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"saga/internal/errors"
)

// UnivariateSample is one parsed (center, sigma, samples) triple.
type UnivariateSample struct {
	Center  float64
	Sigma   float64
	Samples []int64
}

// MultivariateCorpus is a parsed set of vectors plus the sigma estimated
// from them.
type MultivariateCorpus struct {
	Sigma   float64
	Vectors [][]float64
}

// ParseUnivariate reads interleaved header/sample line pairs until EOF.
func ParseUnivariate(r io.Reader) ([]UnivariateSample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var out []UnivariateSample
	lineNo := 0
	for scanner.Scan() {
		header := scanner.Text()
		lineNo++
		if strings.TrimSpace(header) == "" {
			continue
		}
		if !scanner.Scan() {
			return nil, parseError("header on line "+strconv.Itoa(lineNo)+" has no sample line", scanner.Err())
		}
		sampleLine := scanner.Text()
		lineNo++

		center, sigma, err := parseHeader(header)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo-1)
		}
		samples, err := parseIntList(sampleLine)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		out = append(out, UnivariateSample{Center: center, Sigma: sigma, Samples: samples})
	}
	if err := scanner.Err(); err != nil {
		return nil, parseError("reading univariate corpus", err)
	}
	if len(out) == 0 {
		return nil, parseError("univariate corpus is empty", nil)
	}
	return out, nil
}

// ParseUnivariateFile opens filename and parses it with ParseUnivariate.
func ParseUnivariateFile(filename string) ([]UnivariateSample, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, parseError("opening "+filename, err)
	}
	defer f.Close()
	return ParseUnivariate(f)
}

// ParseMultivariate reads one vector per line until EOF. Every line must
// carry the same number of entries.
func ParseMultivariate(r io.Reader) (*MultivariateCorpus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var vectors [][]float64
	sumSquares := 0.0
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries, err := parseIntList(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		if len(vectors) > 0 && len(entries) != len(vectors[0]) {
			return nil, parseError("line "+strconv.Itoa(lineNo)+" has "+strconv.Itoa(len(entries))+" entries, expected "+strconv.Itoa(len(vectors[0])), nil)
		}
		vec := make([]float64, len(entries))
		for i, v := range entries {
			f := float64(v)
			vec[i] = f
			sumSquares += f * f
		}
		vectors = append(vectors, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, parseError("reading multivariate corpus", err)
	}
	if len(vectors) == 0 {
		return nil, parseError("multivariate corpus is empty", nil)
	}
	sigma := math.Sqrt(sumSquares / float64(len(vectors)*len(vectors[0])))
	return &MultivariateCorpus{Sigma: sigma, Vectors: vectors}, nil
}

// ParseMultivariateFile opens filename and parses it with ParseMultivariate.
func ParseMultivariateFile(filename string) (*MultivariateCorpus, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, parseError("opening "+filename, err)
	}
	defer f.Close()
	return ParseMultivariate(f)
}

// ParseCSV reads integer samples from the first column of a CSV stream.
func ParseCSV(r io.Reader) ([]int64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var samples []int64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError("reading csv corpus", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, parseError("csv value "+record[0]+" is not an integer", err)
		}
		samples = append(samples, v)
	}
	if len(samples) == 0 {
		return nil, parseError("csv corpus is empty", nil)
	}
	return samples, nil
}

// ParseCSVFile opens filename and parses it with ParseCSV.
func ParseCSVFile(filename string) ([]int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, parseError("opening "+filename, err)
	}
	defer f.Close()
	return ParseCSV(f)
}

func parseError(message string, cause error) error {
	return &errors.AppError{Code: errors.CodeParseError, Message: message, Cause: cause}
}

// parseHeader extracts center and sigma from "mu = xxx, sigma = yyy".
func parseHeader(line string) (center, sigma float64, err error) {
	trimmed := strings.TrimSpace(line)
	parts := strings.SplitN(trimmed, ",", 2)
	if len(parts) != 2 {
		return 0, 0, parseError("malformed header "+strconv.Quote(line), nil)
	}
	center, err = parseAssignment(parts[0], "mu")
	if err != nil {
		return 0, 0, err
	}
	sigma, err = parseAssignment(parts[1], "sigma")
	if err != nil {
		return 0, 0, err
	}
	return center, sigma, nil
}

func parseAssignment(field, key string) (float64, error) {
	kv := strings.SplitN(field, "=", 2)
	if len(kv) != 2 || strings.TrimSpace(kv[0]) != key {
		return 0, parseError("expected "+key+" assignment, got "+strconv.Quote(field), nil)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
	if err != nil {
		return 0, parseError("parsing "+key, err)
	}
	return v, nil
}

// parseIntList splits a comma separated list of integers. Capture tools
// commonly leave a trailing comma, so empty trailing fields are ignored.
func parseIntList(line string) ([]int64, error) {
	fields := strings.Split(line, ",")
	out := make([]int64, 0, len(fields))
	for _, field := range fields {
		trimmed := strings.TrimSpace(field)
		if trimmed == "" {
			continue
		}
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, parseError("value "+strconv.Quote(trimmed)+" is not an integer", err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, parseError("no samples on line", nil)
	}
	return out, nil
}
