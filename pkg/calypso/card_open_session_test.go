package calypso

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/calypso-sv/pkg/tlv"
)

func TestNewOpenSession(t *testing.T) {
	challenge := tlv.Hex("11223344")

	tests := []struct {
		name     string
		card     Card
		keyIndex byte
		want     []byte
	}{
		{"Revision 1", Card{ProductType: PrimeRevision1}, 1, tlv.Hex("94 8A 09 38 04 11223344 00")},
		{"Revision 2.4", Card{ProductType: PrimeRevision2}, 1, tlv.Hex("94 8A 89 38 04 11223344 00")},
		{"Revision 3", Card{ProductType: PrimeRevision3}, 3, tlv.Hex("00 8A 0B 39 04 11223344 00")},
		{"Revision 3.2", Card{ProductType: PrimeRevision3, ExtendedMode: true}, 3, tlv.Hex("00 8A 0B 3A 05 00 11223344 00")},
		{"Light", Card{ProductType: Light}, 2, tlv.Hex("00 8A 0A 39 04 11223344 00")},
		{"Basic", Card{ProductType: Basic}, 0, tlv.Hex("00 8A 08 39 04 11223344 00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewOpenSession(tt.card, tt.keyIndex, challenge, 0x07, 1)
			require.NoError(t, err)

			got, err := cmd.Bytes()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0x07, cmd.SFI())
			assert.Equal(t, 1, cmd.RecordNumber())
		})
	}
}

func TestNewOpenSession_Invalid(t *testing.T) {
	challenge := tlv.Hex("11223344")

	tests := []struct {
		name     string
		card     Card
		keyIndex byte
		sfi      int
		record   int
		wantErr  error
	}{
		{"Zero key index rev 1", Card{ProductType: PrimeRevision1}, 0, 7, 1, ErrInvalidArgument},
		{"Zero key index rev 2.4", Card{ProductType: PrimeRevision2}, 0, 7, 1, ErrInvalidArgument},
		{"Unknown product", Card{}, 1, 7, 1, ErrUnsupportedProduct},
		{"SFI out of range", Card{ProductType: PrimeRevision3}, 1, 0x20, 1, ErrInvalidArgument},
		{"Record out of range", Card{ProductType: PrimeRevision3}, 1, 7, 32, ErrInvalidArgument},
		{"Record out of range rev 2.4", Card{ProductType: PrimeRevision2}, 1, 7, 16, ErrInvalidArgument},
		{"Negative record", Card{ProductType: PrimeRevision3}, 1, 7, -1, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOpenSession(tt.card, tt.keyIndex, challenge, tt.sfi, tt.record)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestOpenSession_ParseResponse(t *testing.T) {
	record29 := bytes.Repeat([]byte{0xEE}, 29)

	tests := []struct {
		name string
		card Card
		data []byte
		want SecureSession
	}{
		{
			name: "Revision 3 ratified",
			card: Card{ProductType: PrimeRevision3},
			data: tlv.Hex("030405 AA 00 30 7E 02 CAFE"),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AA"), Ratified: true,
				KIF: 0x30, HasKIF: true, KVC: 0x7E, HasKVC: true, RecordData: tlv.Hex("CAFE"),
			},
		},
		{
			name: "Revision 3 not ratified",
			card: Card{ProductType: PrimeRevision3},
			data: tlv.Hex("030405 AA 01 30 7E 00"),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AA"), Ratified: false,
				KIF: 0x30, HasKIF: true, KVC: 0x7E, HasKVC: true, RecordData: []byte{},
			},
		},
		{
			name: "Revision 3.2",
			card: Card{ProductType: PrimeRevision3, ExtendedMode: true},
			data: tlv.Hex("030405 AABBCCDDEE 03 30 7E 01 CA"),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AABBCCDDEE"),
				Ratified: false, ManageAuthorized: true,
				KIF: 0x30, HasKIF: true, KVC: 0x7E, HasKVC: true, RecordData: tlv.Hex("CA"),
			},
		},
		{
			name: "Revision 2.4 ratified without record",
			card: Card{ProductType: PrimeRevision2},
			data: tlv.Hex("7E 030405 AA"),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AA"), Ratified: true,
				KVC: 0x7E, HasKVC: true, RecordData: []byte{},
			},
		},
		{
			name: "Revision 2.4 not ratified with record",
			card: Card{ProductType: PrimeRevision2},
			data: append(tlv.Hex("7E 030405 AA 0000"), record29...),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AA"), Ratified: false,
				KVC: 0x7E, HasKVC: true, RecordData: record29,
			},
		},
		{
			name: "Revision 1 ratified with record",
			card: Card{ProductType: PrimeRevision1},
			data: append(tlv.Hex("030405 AA"), record29...),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AA"), Ratified: true,
				RecordData: record29,
			},
		},
		{
			name: "Revision 1 not ratified",
			card: Card{ProductType: PrimeRevision1},
			data: tlv.Hex("030405 AA 0000"),
			want: SecureSession{
				TransactionCounter: tlv.Hex("030405"), Challenge: tlv.Hex("AA"), Ratified: false,
				RecordData: []byte{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewOpenSession(tt.card, 1, tlv.Hex("11223344"), 7, 1)
			require.NoError(t, err)
			require.NoError(t, cmd.ParseResponse(tt.data))

			tt.want.Raw = tt.data
			assert.Equal(t, &tt.want, cmd.Session())
			assert.Equal(t, 0x030405, cmd.Session().TransactionCounterValue())
		})
	}
}

func TestOpenSession_ParseResponseInvalid(t *testing.T) {
	tests := []struct {
		name string
		card Card
		data []byte
	}{
		{"Revision 3 too short", Card{ProductType: PrimeRevision3}, tlv.Hex("030405 AA 00 30")},
		{"Revision 3 truncated record", Card{ProductType: PrimeRevision3}, tlv.Hex("030405 AA 00 30 7E 04 CAFE")},
		{"Revision 3.2 too short", Card{ProductType: PrimeRevision3, ExtendedMode: true}, tlv.Hex("030405 AA 00 30 7E 00")},
		{"Revision 2.4 bad length", Card{ProductType: PrimeRevision2}, tlv.Hex("7E 030405 AA 00")},
		{"Revision 1 bad length", Card{ProductType: PrimeRevision1}, tlv.Hex("030405 AA 00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewOpenSession(tt.card, 1, tlv.Hex("11223344"), 7, 1)
			require.NoError(t, err)

			err = cmd.ParseResponse(tt.data)
			assert.True(t, errors.Is(err, ErrInvalidResponse), "got %v", err)
			assert.Nil(t, cmd.Session())
		})
	}
}

func TestOpenSession_ParseEmptyResponse(t *testing.T) {
	cmd, err := NewOpenSession(Card{ProductType: PrimeRevision3}, 1, tlv.Hex("11223344"), 7, 1)
	require.NoError(t, err)
	require.NoError(t, cmd.ParseResponse(nil))
	assert.Nil(t, cmd.Session())
}

func TestOpenSession_Interpret(t *testing.T) {
	cmd, err := NewOpenSession(Card{ProductType: PrimeRevision3}, 1, tlv.Hex("11223344"), 7, 1)
	require.NoError(t, err)

	assert.Equal(t, Terminated, cmd.Interpret(0x6900).Category)
	assert.Equal(t, "Wrong key index.", cmd.Interpret(0x6A81).Description)
	assert.True(t, cmd.Interpret(0x61FF).IsSuccess())
}
