package main

import (
	"flag"
	"fmt"
	"os"

	pkgversion "github.com/pzverkov/qkdnet/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "link":
		linkCommand()
	case "network":
		networkCommand()
	case "batch":
		batchCommand()
	case "threat":
		threatCommand()
	case "correlate":
		correlateCommand()
	case "version":
		fmt.Printf("qkdnet version %s\n", getVersion())
		if buildTime != "unknown" {
			fmt.Printf("Built: %s\n", buildTime)
		}
		if gitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", gitCommit)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`qkdnet - BB84 QKD Network Simulator

USAGE:
    qkdnet <command> [options]

COMMANDS:
    link       Run a single sender-receiver BB84 link
    network    Run one multi-receiver attack scenario
    batch      Run a batch of randomized scenarios
    threat     Run the standard threat-profile study
    correlate  Sweep intercept rate against observed QBER
    version    Print version information
    help       Show this help message

Run 'qkdnet <command> --help' for more information on a command.

EXAMPLES:
    # Clean 10-qubit link, fixed seed
    qkdnet link --qubits 10 --seed 42

    # Link with a 50% intercept-resend attacker
    qkdnet link --qubits 20 --attacker-rate 0.5

    # One scenario against the canonical four receivers
    qkdnet network --archetype single_attacker_single_target

    # Reproducible batch of 3 random scenarios
    qkdnet batch --scenarios 3 --seed 1234

    # Threat study, 50 trials per profile
    qkdnet threat --trials 50

All simulation results are printed to stdout as JSON; logs go to stderr.

PROJECT:
    qkdnet - multi-party BB84 simulation with intercept-resend attackers
    Detection: QBER over sifted key, 11% security threshold`)
}

func linkCommand() {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	qubits := fs.Int("qubits", 10, "Number of qubits to transmit")
	seed := fs.Uint64("seed", 0, "Random seed (0 = fresh entropy)")
	rate := fs.Float64("attacker-rate", 0, "Intercept probability of a single attacker (0 = clean link)")
	threshold := fs.Float64("threshold", 0, "QBER security threshold percent (0 = standard 11%)")
	common := commonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`USAGE: qkdnet link [options]

Run one BB84 exchange between the sender and a single receiver and print
the link result as JSON.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Clean reproducible link
    qkdnet link --qubits 10 --seed 42

    # Full intercept-resend attack (expect ~25% QBER)
    qkdnet link --qubits 100 --attacker-rate 1.0`)
	}

	_ = fs.Parse(os.Args[2:])

	runLink(*qubits, *seed, *rate, *threshold, *common)
}

func networkCommand() {
	fs := flag.NewFlagSet("network", flag.ExitOnError)
	qubits := fs.Int("qubits", 10, "Number of qubits per link")
	seed := fs.Uint64("seed", 0, "Random seed (0 = fresh entropy)")
	receivers := fs.Int("receivers", 4, "Number of receivers")
	archetype := fs.String("archetype", "", "Scenario archetype (empty = random)")
	threshold := fs.Float64("threshold", 0, "QBER security threshold percent (0 = standard 11%)")
	common := commonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`USAGE: qkdnet network [options]

Generate one attack scenario and run a BB84 link to every receiver,
printing the scenario result as JSON.

ARCHETYPES:
    no_attack
    single_attacker_single_target
    single_attacker_multiple_targets
    multiple_attackers_single_targets
    multiple_attackers_multiple_targets

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Random archetype against the canonical receivers
    qkdnet network --seed 7

    # Pin the archetype
    qkdnet network --archetype multiple_attackers_multiple_targets --receivers 6`)
	}

	_ = fs.Parse(os.Args[2:])

	runNetwork(*qubits, *seed, *receivers, *archetype, *threshold, *common)
}

func batchCommand() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML run configuration file (flags override)")
	qubits := fs.Int("qubits", 10, "Number of qubits per link")
	scenarios := fs.Int("scenarios", 3, "Number of random scenarios")
	seed := fs.Uint64("seed", 0, "Random seed (0 = fresh entropy)")
	receivers := fs.Int("receivers", 4, "Number of receivers")
	threshold := fs.Float64("threshold", 0, "QBER security threshold percent (0 = standard 11%)")
	common := commonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`USAGE: qkdnet batch [options]

Generate and run a batch of randomized attack scenarios and print the
batch result, including overall statistics, as JSON. The same seed always
reproduces the same batch.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Reproducible batch
    qkdnet batch --scenarios 3 --seed 1234

    # From a configuration file, with metrics served during the run
    qkdnet batch --config run.yaml --metrics-addr :9090`)
	}

	_ = fs.Parse(os.Args[2:])

	runBatch(*configPath, fs, *qubits, *scenarios, *seed, *receivers, *threshold, *common)
}

func threatCommand() {
	fs := flag.NewFlagSet("threat", flag.ExitOnError)
	qubits := fs.Int("qubits", 50, "Number of qubits per trial")
	trials := fs.Int("trials", 30, "Trials per threat profile")
	seed := fs.Uint64("seed", 0, "Random seed (0 = fresh entropy)")
	threshold := fs.Float64("threshold", 0, "QBER security threshold percent (0 = standard 11%)")
	common := commonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`USAGE: qkdnet threat [options]

Run repeated trials for each standard threat profile (no attack, stealth,
passive, aggressive, variable) and print per-profile QBER statistics and
status as JSON.

OPTIONS:`)
		fs.PrintDefaults()
	}

	_ = fs.Parse(os.Args[2:])

	runThreat(*qubits, *trials, *seed, *threshold, *common)
}

func correlateCommand() {
	fs := flag.NewFlagSet("correlate", flag.ExitOnError)
	qubits := fs.Int("qubits", 50, "Number of qubits per trial")
	trials := fs.Int("trials", 20, "Trials per sweep point")
	step := fs.Float64("step", 0.05, "Intercept-rate sweep step")
	seed := fs.Uint64("seed", 0, "Random seed (0 = fresh entropy)")
	threshold := fs.Float64("threshold", 0, "QBER security threshold percent (0 = standard 11%)")
	common := commonFlags(fs)

	fs.Usage = func() {
		fmt.Println(`USAGE: qkdnet correlate [options]

Sweep the intercept rate from 0 to 1 and print how the observed QBER
tracks it: per-point statistics, Pearson correlation, linear fit, and the
detection-threshold crossing, as JSON.

OPTIONS:`)
		fs.PrintDefaults()
	}

	_ = fs.Parse(os.Args[2:])

	runCorrelate(*qubits, *trials, *step, *seed, *threshold, *common)
}
