// Package main is a thin runner around pkg/hype: load ambient config, build
// one Interpreter, run a script, report whatever its top-level export value
// was. It is not a general-purpose CLI (no REPL, no flags beyond config path)
// — embedding hosts are expected to call pkg/hype directly; this binary
// exists so the module subsystem can be exercised from a shell.
package main

import (
	"flag"
	"os"

	"hype/internal/config"
	"hype/internal/obs"
	"hype/pkg/hype"
)

var log = obs.For("cmd")

func main() {
	cfgPath := flag.String("config", "", "path to YAML ambient config (optional)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Error("usage: hype [-config path] <script.lua>")
		os.Exit(2)
	}
	scriptPath := flag.Arg(0)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.LoadFile(*cfgPath)
		if err != nil {
			log.WithField("config", *cfgPath).WithError(err).Error("config_load_failed")
			os.Exit(1)
		}
		cfg = loaded
	}

	interp, err := hype.New(cfg)
	if err != nil {
		log.WithError(err).Error("interpreter_init_failed")
		os.Exit(1)
	}
	defer interp.Close()

	exports, err := interp.RunScript(scriptPath)
	if err != nil {
		log.WithField("script", scriptPath).WithError(err).Error("script_failed")
		os.Exit(1)
	}

	log.WithField("script", scriptPath).WithField("exports", exports.String()).Info("script_completed")
}
