// Command rssi-survey turns GPS/RSSI telemetry captured on a site walk into
// kriged heatmaps, point maps and radial signal profiles.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/version"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("rssi-survey: ")

	err := runCommand(fsutil.OSFileSystem{}, os.Stdout, os.Args[1:])
	switch {
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		os.Exit(2)
	case err != nil:
		log.Fatalf("%v", err)
	}
}

var errUsage = errors.New("usage")

// runCommand dispatches args to a subcommand. No arguments, or a bare flag
// list, runs the heatmap command.
func runCommand(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	if len(args) == 0 {
		return handleHeatmap(fsys, stdout, args)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "heatmap":
		return handleHeatmap(fsys, stdout, rest)
	case "run":
		return handleRun(fsys, stdout, rest)
	case "fixcsv":
		return handleFixCSV(fsys, stdout, rest)
	case "pointmap":
		return handlePointMap(fsys, stdout, rest)
	case "binned":
		return handleBinned(fsys, stdout, rest)
	case "profile":
		return handleProfile(fsys, stdout, rest)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	}
	if len(command) > 1 && command[0] == '-' {
		return handleHeatmap(fsys, stdout, args)
	}
	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `rssi-survey - RSSI site survey maps and plots

Usage: rssi-survey <command> [options]

Commands:
  heatmap    Krige a telemetry CSV onto a grid and render a heatmap (default)
  run        Run the heatmap pipeline from a JSON or YAML config file
  fixcsv     Convert a raw receiver capture into engineering units
  pointmap   Render every sample as a colour-coded marker
  binned     Render a heatmap of per-cell mean RSSI
  profile    Plot RSSI against distance from a base station (PNG)
  version    Show rssi-survey version
  help       Show this help message

Input files are headerless CSV: rssi, lat, lon[, alt, heading].

Examples:
  # Kriged heatmap with a satellite layer
  rssi-survey heatmap --csv walk.csv --out walk.html --grid 20 --satellite

  # Correct raw GNSS units, then plot the fixed file
  rssi-survey fixcsv --in raw.csv --out walk.csv
  rssi-survey pointmap --csv walk.csv --out points.html

  # Stacked radial profiles every 10 degrees
  rssi-survey profile --csv walk.csv --out profile.png --base-lat 53.268 --base-lon -0.53 --mode stacked --step 10

Run 'rssi-survey <command> -h' for the options of each command.`)
}
