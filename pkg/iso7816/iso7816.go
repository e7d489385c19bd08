/*
Package iso7816 holds the ISO/IEC 7816-3/-4 plumbing shared by every command
of the stored value stack: command and response APDUs, status words, the
CLA and INS header bytes, and a Client that drives a card or SAM through a
Transmitter.

# Exchange model

The terminal sends one C-APDU (header CLA INS P1 P2, optional Lc/data,
optional Le) and the card answers one R-APDU (optional data, then SW1 SW2).
T=0 readers may need extra exchanges for a single logical command:

  - 61XX: XX response bytes are pending, fetched with GET RESPONSE.
  - 6CXX: wrong Le, the command is replayed with Le = XX.

Client.Send performs those exchanges and returns them all as a Trace; the
final Transaction carries the status word that decides the outcome.

# Example

	client := iso7816.NewClient(card)
	cla, _ := iso7816.NewClass(iso7816.ClassISO)

	trace, err := client.Send(iso7816.SelectByAID(cla, aid))
	if err != nil {
	    return err
	}
	if !trace.IsSuccess() {
	    return fmt.Errorf("select failed: %s", trace.Last().Response.Status.Verbose())
	}
*/
package iso7816
