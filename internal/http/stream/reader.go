package stream

import "io"

// debtReader replays bytes that were read past the head before handing reads
// through to the reader it owns.
type debtReader struct {
	debt   []byte
	cursor int
	reader io.Reader
}

// NewDebtReader returns r unchanged when there is no debt.
func NewDebtReader(debt []byte, r io.Reader) io.Reader {
	if len(debt) == 0 {
		return r
	}
	return &debtReader{debt: debt, reader: r}
}

func (d *debtReader) Read(p []byte) (int, error) {
	if d.debt == nil {
		return d.reader.Read(p)
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := copy(p, d.debt[d.cursor:])
	d.cursor += n
	if d.cursor == len(d.debt) {
		d.debt = nil
		d.cursor = 0
	}
	return n, nil
}

func (d *debtReader) Close() error {
	d.debt = nil
	if closer, ok := d.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
