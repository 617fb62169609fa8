package metadata

import (
	"encoding/binary"

	"solana-token-info/internal/solana"
)

// Encode serializes m in the account layout read by Decode.
// Absent optional fields are written as None, so the output always carries
// every field. Used to build account fixtures.
func Encode(m *Metadata) []byte {
	w := &writer{}

	w.u8(uint8(m.Key))
	w.pubkey(m.UpdateAuthority)
	w.pubkey(m.Mint)
	w.str(m.Name)
	w.str(m.Symbol)
	w.str(m.URI)
	w.u16(m.SellerFeeBasisPoints)

	if m.Creators == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u32(uint32(len(m.Creators)))
		for _, c := range m.Creators {
			w.pubkey(c.Address)
			w.boolean(c.Verified)
			w.u8(c.Share)
		}
	}

	w.boolean(m.PrimarySaleHappened)
	w.boolean(m.IsMutable)

	if m.EditionNonce == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u8(*m.EditionNonce)
	}

	if m.TokenStandard == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u8(uint8(*m.TokenStandard))
	}

	if m.Collection == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.boolean(m.Collection.Verified)
		w.pubkey(m.Collection.Key)
	}

	if m.Uses == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u8(uint8(m.Uses.UseMethod))
		w.u64(m.Uses.Remaining)
		w.u64(m.Uses.Total)
	}

	if m.CollectionDetails == nil {
		w.u8(0)
	} else {
		w.u8(1)
		if m.CollectionDetails.Version == 2 {
			w.u8(1)
			w.buf = append(w.buf, m.CollectionDetails.Padding[:]...)
		} else {
			w.u8(0)
			w.u64(m.CollectionDetails.Size)
		}
	}

	if m.ProgrammableConfig == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u8(0)
		if m.ProgrammableConfig.RuleSet == nil {
			w.u8(0)
		} else {
			w.u8(1)
			w.pubkey(*m.ProgrammableConfig.RuleSet)
		}
	}

	return w.buf
}

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) pubkey(k solana.PublicKey) {
	w.buf = append(w.buf, k[:]...)
}

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}
