package transport

import (
	"bufio"
	"io"
	"strings"
)

// DoneMarker is the data payload OpenAI-compatible streams send last
const DoneMarker = "[DONE]"

// Event is one Server-Sent Event.
type Event struct {
	// Name is the "event:" field (empty for the default "message" event)
	Name string

	// ID is the "id:" field
	ID string

	// Data holds the "data:" lines joined by "\n"
	Data string
}

// Decoder decodes Server-Sent Events from a byte stream.
//
// Comment lines (":...") and unknown fields are skipped, CRLF line endings are
// tolerated, and an event cut off by EOF without a trailing blank line is
// still delivered.
type Decoder struct {
	r *bufio.Reader

	name string
	id   string
	data []string
	seen bool
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next event. It returns io.EOF when the stream ends cleanly
// and the underlying read error otherwise.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return Event{}, err
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if d.seen {
				return d.flush(), nil
			}
			if err == io.EOF {
				return Event{}, io.EOF
			}
			continue
		}

		d.parseLine(line)

		if err == io.EOF {
			if d.seen {
				return d.flush(), nil
			}
			return Event{}, io.EOF
		}
	}
}

func (d *Decoder) parseLine(line string) {
	if strings.HasPrefix(line, ":") {
		return
	}

	field, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch field {
	case "data":
		d.data = append(d.data, value)
		d.seen = true
	case "event":
		d.name = value
		d.seen = true
	case "id":
		d.id = value
		d.seen = true
	}
}

func (d *Decoder) flush() Event {
	ev := Event{
		Name: d.name,
		ID:   d.id,
		Data: strings.Join(d.data, "\n"),
	}
	d.name = ""
	d.id = ""
	d.data = d.data[:0]
	d.seen = false
	return ev
}

// IsDone reports whether data is the end-of-stream marker
func IsDone(data string) bool {
	return strings.TrimSpace(data) == DoneMarker
}
