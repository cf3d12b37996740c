package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/xrpm/cmd/rpmsig-tool/cli"
	"github.com/effective-security/xrpm/internal/version"
	"github.com/effective-security/xrpm/rpmcrypto"
)

type app struct {
	cli.Cli

	Inspect cli.InspectCmd `cmd:"" help:"validate a signature and print its summary"`
	Check   cli.CheckCmd   `cmd:"" help:"pass a signature to the native library and digest the signed content"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, rpmcrypto.Exit)
	rpmcrypto.Exit(0)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("rpmsig-tool"),
		kong.Description("OpenPGP signature checks for RPM"),
		//kong.UsageOnError(),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG more print command line
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(args, " "))
		}
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
