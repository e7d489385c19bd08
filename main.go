package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ebfe/scard"
	"github.com/sirupsen/logrus"

	"github.com/gregLibert/calypso-sv/pkg/calypso"
	"github.com/gregLibert/calypso-sv/pkg/config"
	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file (default $CALYPSO_CONFIG)")
	flag.Parse()

	if err := app(*configPath); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
	fmt.Println("\n>> SV Debit Finished Successfully")
}

func app(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Log.Apply(logrus.StandardLogger()); err != nil {
		return err
	}

	// --- 1. Hardware Setup ---
	ctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Errorf("establish context: %w", err)
	}
	defer func() {
		if err := ctx.Release(); err != nil {
			logrus.WithError(err).Warn("failed to release context")
		}
	}()

	cardReader, samReader, err := pickReaders(ctx, cfg)
	if err != nil {
		return err
	}

	card, err := connect(ctx, cardReader)
	if err != nil {
		return err
	}
	defer disconnect(card)

	sam, err := connect(ctx, samReader)
	if err != nil {
		return err
	}
	defer disconnect(sam)

	// --- 2. Execution Flow ---
	return run(cfg, card, sam)
}

// pickReaders resolves the card and SAM reader names, defaulting to the
// first and second connected readers.
func pickReaders(ctx *scard.Context, cfg *config.Config) (string, string, error) {
	cardReader, samReader := cfg.Card.Reader, cfg.SAM.Reader
	if cardReader != "" && samReader != "" {
		return cardReader, samReader, nil
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		return "", "", fmt.Errorf("list readers: %w", err)
	}
	if cardReader == "" {
		if len(readers) < 1 {
			return "", "", fmt.Errorf("no smart card reader found")
		}
		cardReader = readers[0]
	}
	if samReader == "" {
		if len(readers) < 2 {
			return "", "", fmt.Errorf("no SAM reader found (%d reader(s) connected)", len(readers))
		}
		samReader = readers[1]
	}
	return cardReader, samReader, nil
}

func connect(ctx *scard.Context, reader string) (*scard.Card, error) {
	logrus.WithField("reader", reader).Info("connecting")

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", reader, err)
	}
	return card, nil
}

func disconnect(card *scard.Card) {
	if err := card.Disconnect(scard.LeaveCard); err != nil {
		logrus.WithError(err).Warn("failed to disconnect")
	}
}

func run(cfg *config.Config, cardLink, samLink *scard.Card) error {
	cardClient := iso7816.NewClient(cardLink)
	samClient := iso7816.NewClient(samLink)

	samType, err := identifySAM(samLink)
	if err != nil {
		return err
	}

	fci, err := selectApplication(cfg, cardClient)
	if err != nil {
		return err
	}
	card := fci.Card

	banner("Step 3: SAM SELECT DIVERSIFIER")
	div, err := calypso.NewSelectDiversifier(samType, fci.SerialNumber)
	if err != nil {
		return err
	}
	if err := execute(samClient, div); err != nil {
		return err
	}

	banner("Step 4: CARD SV GET")
	get := calypso.NewSvGet(card, calypso.SvDebit)
	if err := execute(cardClient, get); err != nil {
		return err
	}
	fmt.Printf(">> Balance: %d, TNum: %d, KVC: %02X\n", get.Balance, get.TransactionNumber, get.KVC)

	date, tm := svDateTime(time.Now())
	debit, err := calypso.NewSvDebit(card, cfg.SV.Amount, get.KVC, date, tm)
	if err != nil {
		return err
	}

	banner("Step 5: SAM SV PREPARE DEBIT")
	prepare, err := calypso.NewSvPrepareDebit(samType, get.Header(), get.Response(), debit.SvData())
	if err != nil {
		return err
	}
	if err := execute(samClient, prepare); err != nil {
		return err
	}

	banner("Step 6: CARD SV DEBIT")
	if err := debit.Finalize(prepare.ComplementaryData()); err != nil {
		return err
	}
	if err := execute(cardClient, debit); err != nil {
		return err
	}

	banner("Step 7: SAM SV CHECK")
	check, err := calypso.NewSvCheck(samType, debit.Signature())
	if err != nil {
		return err
	}
	return execute(samClient, check)
}

// identifySAM reads the SAM ATR from the reader and resolves its product type.
func identifySAM(link *scard.Card) (calypso.SamProductType, error) {
	banner("Step 1: SAM IDENTIFICATION")

	status, err := link.Status()
	if err != nil {
		return calypso.SamUnknown, fmt.Errorf("SAM status: %w", err)
	}
	info, err := calypso.ParseSamATR(status.Atr)
	if err != nil {
		return calypso.SamUnknown, err
	}
	fmt.Printf(">> SAM %s, serial %X, software %02X.%02X\n",
		info.ProductType, info.SerialNumber, info.SoftwareVersion, info.SoftwareRevision)
	return info.ProductType, nil
}

// selectApplication selects the configured AID and decodes the Calypso FCI.
func selectApplication(cfg *config.Config, client *iso7816.Client) (*calypso.CardFCI, error) {
	banner("Step 2: SELECT CALYPSO APPLICATION")

	aid, err := cfg.AIDBytes()
	if err != nil {
		return nil, err
	}
	trace, err := client.Send(iso7816.SelectByAID(iso7816.MustClass(iso7816.ClassISO), aid))
	if err != nil {
		return nil, fmt.Errorf("select application: %w", err)
	}
	if !trace.IsSuccess() {
		return nil, fmt.Errorf("select application failed with status: %s", trace.Status().Verbose())
	}

	fci, err := calypso.ParseCardFCI(trace.Data())
	if err != nil {
		return nil, err
	}
	fmt.Println(fci.Describe())
	return fci, nil
}

// execute runs cmd and prints its report, whatever the outcome.
func execute(client *iso7816.Client, cmd calypso.Command) error {
	trace, err := calypso.Execute(client, cmd)
	fmt.Println(calypso.Describe(cmd, trace))
	return err
}

// svDateTime encodes t as the Calypso SV date (days since 1990-01-01) and
// time (minutes since midnight).
func svDateTime(t time.Time) ([]byte, []byte) {
	epoch := time.Date(1990, time.January, 1, 0, 0, 0, 0, t.Location())
	days := int(t.Sub(epoch).Hours() / 24)
	minutes := t.Hour()*60 + t.Minute()
	return []byte{byte(days >> 8), byte(days)}, []byte{byte(minutes >> 8), byte(minutes)}
}

func banner(title string) {
	fmt.Println("\n=============================================")
	fmt.Println(" " + title)
	fmt.Println("=============================================")
}
