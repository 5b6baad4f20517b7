package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/cm1106/adapter"
	"github.com/mklimuk/cm1106/cmd/cm1106/console"
)

var usbCmd = cli.Command{
	Name:  "usb",
	Usage: "inspect USB HID devices",
	Subcommands: cli.Commands{
		&usbLsCmd,
		&usbDetectCmd,
	},
}

var usbLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list all HID devices",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Writer(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tMANUFACTURER\tPRODUCT")
		for _, dev := range adapter.Enumerate() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%#04x\t%#04x\t%s\t%s\n",
				dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Manufacturer, dev.Product)
		}
		return w.Flush()
	},
}

var usbDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "find connected USB to I2C bridges",
	Action: func(c *cli.Context) error {
		found := adapter.Detect(adapter.Enumerate())
		if len(found) == 0 {
			return console.Exit(1, "%s", console.Yellow("no supported bridge connected"))
		}
		w := tabwriter.NewWriter(console.Writer(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "BRIDGE\tVENDOR\tPRODUCT\tPATH\tSERIAL")
		for _, b := range found {
			_, _ = fmt.Fprintf(w, "%s\t%#04x\t%#04x\t%s\t%s\n", b.Name, b.VendorID, b.ProductID, b.Path, b.Serial)
		}
		return w.Flush()
	},
}
