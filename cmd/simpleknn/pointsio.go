package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readPoints parses one point per line ("x y z", "x,y,z" or tab separated)
// into a flat coordinate buffer. Blank lines and '#' comments are skipped.
func readPoints(r io.Reader) ([]float64, error) {
	var flat []float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 coordinates, got %d", line, len(fields))
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			flat = append(flat, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading points: %w", err)
	}
	return flat, nil
}

// writeValues writes one value per line.
func writeValues(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// writeScales writes three space-separated values per line.
func writeScales(w io.Writer, scales [][3]float64) error {
	bw := bufio.NewWriter(w)
	for _, s := range scales {
		fmt.Fprintf(bw, "%s %s %s\n",
			strconv.FormatFloat(s[0], 'g', -1, 64),
			strconv.FormatFloat(s[1], 'g', -1, 64),
			strconv.FormatFloat(s[2], 'g', -1, 64))
	}
	return bw.Flush()
}
