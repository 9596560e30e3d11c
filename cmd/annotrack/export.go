package main

import (
	"log"

	cli "github.com/spf13/cobra"
	"github.com/swdee/go-annotrack"
)

var (
	// exportCmd rebuilds the XML annotation from a raw session dump
	exportCmd = &cli.Command{
		Use:          "export",
		Short:        "Write the CVAT XML annotation from a raw session dump",
		Args:         cli.NoArgs,
		SilenceUsage: true,
		RunE:         runExport,
	}

	exportDump   = annotrack.DefaultDumpFile
	exportOutput = annotrack.DefaultOutputFile
	exportLabel  = annotrack.DefaultLabel
)

func init() {
	flags := exportCmd.Flags()
	flags.StringVar(&exportDump, "dump", exportDump, "Raw session dump file to read")
	flags.StringVarP(&exportOutput, "output", "o", exportOutput, "CVAT XML annotation file to write")
	flags.StringVar(&exportLabel, "label", exportLabel, "Label given to every track")
}

// runExport loads the dump and writes its XML annotation
func runExport(cmd *cli.Command, args []string) error {

	sessions, err := annotrack.ReadDumpFile(exportDump)

	if err != nil {
		return err
	}

	if err := annotrack.ValidateSessions(sessions); err != nil {
		log.Printf("Warning: dump %s: %v\n", exportDump, err)
	}

	log.Printf("Loaded %d sessions from %s\n", len(sessions), exportDump)

	return writeAnnotations(exportOutput, sessions, exportLabel)
}
