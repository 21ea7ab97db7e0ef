package main

import (
	"fmt"
	"runtime"
	"strings"

	cli "github.com/urfave/cli/v3"

	"factbatch/common"
	"factbatch/convert"
	"factbatch/misc"
)

const convertHelp = `%s
SOURCE:
    event stream(s) to process, following formats are supported:
        path to a file: "[path_to_file]file.jsonl"
        path to a directory: "[path_to_directory]directory" - recursively process all event files under directory (symbolic links are not followed)
        path to archive with path inside archive to a particular event file: "[path_to_archive]archive.zip[path_in_archive]/file.jsonl"
        path to archive with path inside archive: "[path_to_archive]archive.zip[path_in_archive]" - recursively process all event files under archive path
        "-" - read events from STDIN

    Event files are recognized by extension: %s, optionally followed by %s.
    Compression is also recognized by content. Explicitly named file or STDIN
    with unknown extension is read using input.default_format from configuration.
    Processing of archives inside archives is not supported.

DESTINATION:
    always a path, output file name(s) and extension will be derived from other parameters
    if absent - current working directory, ignored with --to-stdout
`

const dumpconfigHelp = `%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "builds Glean fact batches from code indexer fact events",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{convertCommand(), dumpconfigCommand()},
	}
}

func convertCommand() *cli.Command {
	compressed := []string{common.CompressionGzip.Ext(), common.CompressionZstd.Ext()}
	return &cli.Command{
		Name:         "convert",
		Usage:        "Converts fact event stream(s) to Glean JSON fact batches",
		OnUsageError: usageErrorHandler,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "to-stdout", Aliases: []string{"so"}, Usage: "write fact batch of a single source to STDOUT"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exists, overwrite files"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
		},
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(convertHelp, cli.CommandHelpTemplate,
			".jsonl, .ndjson, .json, .yaml, .yml", strings.Join(compressed, ", ")),
	}
}

func dumpconfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Dumps either default or actual configuration (YAML)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
		},
		OnUsageError:       usageErrorHandler,
		Action:             outputConfiguration,
		ArgsUsage:          "DESTINATION",
		CustomHelpTemplate: fmt.Sprintf(dumpconfigHelp, cli.CommandHelpTemplate),
	}
}
