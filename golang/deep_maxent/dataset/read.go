package dataset

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/deep_maxent/golang/deep_maxent/dme"
)

// MissingValue marks a missing covariate in text data.
const MissingValue = "."

// Data is a finalized space together with the number of observations of every point.
// Counts[key] belongs to the point with that key.
type Data struct {
	Space  *dme.Space
	Counts []int
}

// NumRawFeatures returns the number of covariates of the first point, 0 for an empty space.
func (data *Data) NumRawFeatures() int {
	if data.Space.NumPoints() == 0 {
		return 0
	}
	return data.Space.Point(0).NumRawFeatures()
}

// NumObservations returns the total count.
func (data *Data) NumObservations() int {
	total := 0
	for _, count := range data.Counts {
		total += count
	}
	return total
}

// ReadText parses lines of whitespace separated values "v_1 ... v_k count".
// A line with a missing covariate is skipped, blank lines are ignored. Point ids follow the order of the kept lines.
func ReadText(r io.Reader) (*Data, error) {
	data := &Data{Space: dme.NewSpace()}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		elems := strings.Fields(scanner.Text())
		if len(elems) == 0 {
			continue
		}
		values := make([]float64, 0, len(elems)-1)
		missing := false
		for _, elem := range elems[:len(elems)-1] {
			if elem == MissingValue {
				missing = true
				break
			}
			value, err := strconv.ParseFloat(elem, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad covariate %q", lineNumber, elem)
			}
			values = append(values, value)
		}
		if missing {
			continue
		}
		count, err := strconv.Atoi(elems[len(elems)-1])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad count %q", lineNumber, elems[len(elems)-1])
		}
		if count < 0 {
			return nil, errors.Errorf("line %d: negative count %d", lineNumber, count)
		}
		data.Space.AddPoint(dme.NewPointWithFeatures(len(data.Counts), values...))
		data.Counts = append(data.Counts, count)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "can't read data")
	}
	data.Space.Finalize()
	return data, nil
}

// ReadFile reads text data from the file.
func ReadFile(fileName string) (*Data, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", fileName)
	}
	defer func() { _ = f.Close() }()

	data, err := ReadText(f)
	return data, errors.Wrapf(err, "can't parse %s", fileName)
}

// ReadNpyMatrix reads the content of an npy file into a dense matrix.
func ReadNpyMatrix(fileName string) (*mat.Dense, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", fileName)
	}
	defer func() { _ = f.Close() }()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read npy header of %s", fileName)
	}
	denseMat := &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "can't read npy data of %s", fileName)
	}
	return denseMat, nil
}

// ReadNpy reads covariates (one row per point) and observation counts (a row or a column vector) from npy files.
func ReadNpy(covariatesFileName, countsFileName string) (*Data, error) {
	covariates, err := ReadNpyMatrix(covariatesFileName)
	if err != nil {
		return nil, err
	}
	countsMatrix, err := ReadNpyMatrix(countsFileName)
	if err != nil {
		return nil, err
	}
	counts, err := vectorToCounts(countsMatrix)
	if err != nil {
		return nil, errors.Wrapf(err, "bad counts in %s", countsFileName)
	}
	return FromMatrix(covariates, counts)
}

func vectorToCounts(m mat.Matrix) ([]int, error) {
	h, w := m.Dims()
	if h != 1 && w != 1 {
		return nil, errors.Errorf("counts must be a vector, got %dx%d", h, w)
	}
	counts := make([]int, 0, h*w)
	for p := 0; p < h; p++ {
		for q := 0; q < w; q++ {
			value := m.At(p, q)
			if value < 0 || value != math.Trunc(value) {
				return nil, errors.Errorf("count %v is not a non-negative integer", value)
			}
			counts = append(counts, int(value))
		}
	}
	return counts, nil
}

// FromMatrix builds data from a covariate matrix. Rows with a NaN covariate are skipped together with their counts.
func FromMatrix(m mat.Matrix, counts []int) (*Data, error) {
	h, w := m.Dims()
	if len(counts) != h {
		return nil, errors.Errorf("got %d counts for %d rows", len(counts), h)
	}
	data := &Data{Space: dme.NewSpace()}
	values := make([]float64, w)
	for p := 0; p < h; p++ {
		missing := false
		for q := 0; q < w; q++ {
			values[q] = m.At(p, q)
			if math.IsNaN(values[q]) {
				missing = true
			}
		}
		if missing {
			continue
		}
		data.Space.AddPoint(dme.NewPointWithFeatures(len(data.Counts), values...))
		data.Counts = append(data.Counts, counts[p])
	}
	data.Space.Finalize()
	return data, nil
}
