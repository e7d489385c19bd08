/*
Package calypso builds the Calypso card and SAM commands of a stored value
(SV) debit and interprets their status words.

Every command is a Command: an iso7816.CommandAPDU plus the status table
documented for it. Execute sends a command through an iso7816.Client,
resolves the final status word into an Outcome and turns failures into a
*StatusError that matches the category sentinels:

	_, err := calypso.Execute(sam, prepare)
	if errors.Is(err, calypso.ErrAccessForbidden) {
	    // no SV Get was done in the current SAM session
	}

# SV debit

A debit chains card and SAM commands, each feeding the next:

	get := calypso.NewSvGet(card, calypso.SvDebit)                  // card
	debit, _ := calypso.NewSvDebit(card, amount, kvc, date, time)
	prepare, _ := calypso.NewSvPrepareDebit(samType,
	    get.Header(), get.Response(), debit.SvData())               // SAM
	_ = debit.Finalize(prepare.ComplementaryData())                  // card
	check, _ := calypso.NewSvCheck(samType, debit.Signature())      // SAM
*/
package calypso
