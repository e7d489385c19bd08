package iso7816

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultMaxExchanges bounds the GET RESPONSE / Le correction chain of a
// single Send.
const DefaultMaxExchanges = 8

// ErrTooManyExchanges is returned when the card keeps answering 61XX or 6CXX.
var ErrTooManyExchanges = errors.New("too many protocol exchanges")

// Transmitter is the physical link to a card or SAM. *scard.Card satisfies it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client sends commands through a Transmitter and resolves the T=0
// procedure statuses 61XX and 6CXX.
type Client struct {
	Card         Transmitter
	Log          logrus.FieldLogger
	MaxExchanges int
}

// NewClient creates a Client logging to the logrus standard logger.
func NewClient(card Transmitter) *Client {
	return &Client{
		Card:         card,
		Log:          logrus.StandardLogger(),
		MaxExchanges: DefaultMaxExchanges,
	}
}

// Send transmits cmd and returns every exchange it took. On 61XX a GET
// RESPONSE with Le=XX is issued on the same logical channel; on 6CXX the
// command is replayed with Le=XX.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	limit := c.MaxExchanges
	if limit <= 0 {
		limit = DefaultMaxExchanges
	}

	var trace Trace
	next := cmd
	for len(trace) < limit {
		tx, err := c.exchange(next)
		if err != nil {
			return trace, err
		}
		trace = append(trace, tx)

		sw := tx.Response.Status
		switch sw.SW1() {
		case 0x61:
			cla := next.Class
			cla.IsChained = false
			next = NewCommandAPDU(cla, MustInstruction(INS_GET_RESPONSE), 0x00, 0x00, nil, responseLength(sw.SW2()))
		case 0x6C:
			retry := *next
			retry.Ne = responseLength(sw.SW2())
			next = &retry
		default:
			return trace, nil
		}
	}

	return trace, fmt.Errorf("%w: %d exchanges for %s", ErrTooManyExchanges, len(trace), cmd.Instruction.Raw)
}

func (c *Client) exchange(cmd *CommandAPDU) (Transaction, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		return Transaction{}, fmt.Errorf("encoding error: %w", err)
	}

	log := c.logger().WithField("ins", cmd.Instruction.Raw.String())
	log.WithField("capdu", fmt.Sprintf("%X", raw)).Debug("transmit")

	rawResp, err := c.Card.Transmit(raw)
	if err != nil {
		log.WithError(err).Warn("transmission failed")
		return Transaction{}, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return Transaction{}, err
	}
	log.WithFields(logrus.Fields{
		"rapdu": fmt.Sprintf("%X", rawResp),
		"sw":    fmt.Sprintf("%04X", uint16(resp.Status)),
	}).Debug("received")

	return Transaction{Command: cmd, Response: resp}, nil
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// responseLength maps an SW2 length to Ne; 00 stands for 256.
func responseLength(sw2 byte) int {
	if sw2 == 0 {
		return MaxShortLe
	}
	return int(sw2)
}
