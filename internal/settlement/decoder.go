// Package settlement mirrors on-chain contest program activity into the database.
package settlement

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/fanpicks/platform/internal/metrics"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// EventName identifies a program event.
type EventName string

const (
	EventContestCreated  EventName = "ContestCreated"
	EventContestEntered  EventName = "ContestEntered"
	EventContestResolved EventName = "ContestResolved"
)

const programDataPrefix = "Program data: "

// ContestCreated is emitted when a contest account is initialised on chain.
type ContestCreated struct {
	ContestID string
	Creator   string
	EntryFee  uint64
}

// ContestEntered is emitted when a wallet pays into a contest.
type ContestEntered struct {
	ContestID string
	User      string
	EntryFee  uint64
}

// ContestResolved is emitted when winnings are distributed.
type ContestResolved struct {
	ContestID string
	Winners   []string
	Amounts   []uint64
}

// Event is one decoded program event. Exactly one payload field is set.
type Event struct {
	Name     EventName
	Created  *ContestCreated
	Entered  *ContestEntered
	Resolved *ContestResolved
}

// ErrShortBuffer is returned when event data ends before a field does.
var ErrShortBuffer = errors.New("event data truncated")

// Discriminator returns the 8-byte Anchor event tag: sha256("event:<name>")[:8].
func Discriminator(name EventName) [8]byte {
	sum := sha256.Sum256([]byte("event:" + string(name)))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

var discriminators = map[[8]byte]EventName{
	Discriminator(EventContestCreated):  EventContestCreated,
	Discriminator(EventContestEntered):  EventContestEntered,
	Discriminator(EventContestResolved): EventContestResolved,
}

// DecodeLogs returns the first program event found in a transaction's log
// lines, or nil when none decode. Undecodable lines are counted and skipped.
func DecodeLogs(logs []string) *Event {
	for _, line := range logs {
		idx := strings.Index(line, programDataPrefix)
		if idx < 0 {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line[idx+len(programDataPrefix):]))
		if err != nil {
			metrics.SettlementDecodeErrors.Inc()
			continue
		}
		ev, err := DecodeEvent(raw)
		if err != nil {
			metrics.SettlementDecodeErrors.Inc()
			continue
		}
		if ev != nil {
			return ev
		}
	}
	return nil
}

// DecodeEvent decodes discriminator-prefixed Borsh event data. Unknown
// discriminators yield (nil, nil).
func DecodeEvent(data []byte) (*Event, error) {
	if len(data) < 8 {
		return nil, ErrShortBuffer
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	name, ok := discriminators[disc]
	if !ok {
		return nil, nil
	}

	dec := bin.NewBorshDecoder(data[8:])
	ev := &Event{Name: name}
	var err error
	switch name {
	case EventContestCreated:
		ev.Created, err = decodeCreated(dec)
	case EventContestEntered:
		ev.Entered, err = decodeEntered(dec)
	case EventContestResolved:
		ev.Resolved, err = decodeResolved(dec)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return ev, nil
}

func decodeCreated(dec *bin.Decoder) (*ContestCreated, error) {
	var (
		c   ContestCreated
		err error
	)
	if c.ContestID, err = readString(dec); err != nil {
		return nil, err
	}
	if c.Creator, err = readPubkey(dec); err != nil {
		return nil, err
	}
	if c.EntryFee, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeEntered(dec *bin.Decoder) (*ContestEntered, error) {
	var (
		e   ContestEntered
		err error
	)
	if e.ContestID, err = readString(dec); err != nil {
		return nil, err
	}
	if e.User, err = readPubkey(dec); err != nil {
		return nil, err
	}
	if e.EntryFee, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, err
	}
	return &e, nil
}

func decodeResolved(dec *bin.Decoder) (*ContestResolved, error) {
	var (
		r   ContestResolved
		err error
	)
	if r.ContestID, err = readString(dec); err != nil {
		return nil, err
	}
	n, err := readVecLen(dec, solana.PublicKeyLength)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		w, err := readPubkey(dec)
		if err != nil {
			return nil, err
		}
		r.Winners = append(r.Winners, w)
	}
	if n, err = readVecLen(dec, 8); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		amt, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		r.Amounts = append(r.Amounts, amt)
	}
	return &r, nil
}

// readString reads a Borsh string: u32 length then UTF-8 bytes.
func readString(dec *bin.Decoder) (string, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return "", err
	}
	if int64(n) > int64(dec.Remaining()) {
		return "", ErrShortBuffer
	}
	b, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readPubkey(dec *bin.Decoder) (string, error) {
	b, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return "", err
	}
	return solana.PublicKeyFromBytes(b).String(), nil
}

// readVecLen reads a vector length and rejects lengths the remaining bytes cannot hold.
func readVecLen(dec *bin.Decoder, elemSize int) (int, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(elemSize) > uint64(dec.Remaining()) {
		return 0, ErrShortBuffer
	}
	return int(n), nil
}
