// Package main provides the ppch-cli command line interface for the hub's
// tree noise and modular exponentiation operations.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/markkurossi/tabulate"
	"github.com/sirupsen/logrus"

	ppch "github.com/BackendStack21/ppch-go"
	"github.com/BackendStack21/ppch-go/core"
	"github.com/BackendStack21/ppch-go/hexfield"
	"github.com/BackendStack21/ppch-go/modexp"
	"github.com/BackendStack21/ppch-go/noise"
	"github.com/BackendStack21/ppch-go/utils"
)

const (
	version = "0.3.0"
	appName = "ppch-cli"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks bad invocations; they exit with exitUsage.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// NoiseExport is the output of the noise command.
type NoiseExport struct {
	Profile   string        `json:"profile"`
	Height    uint          `json:"height"`
	Lambda    float64       `json:"lambda"`
	Timestamp uint32        `json:"timestamp"`
	Nodes     []ppch.NodeID `json:"nodes"`
	Noise     float64       `json:"noise"`
}

// PerturbExport is the output of the perturb command.
type PerturbExport struct {
	Value     float64 `json:"value"`
	Timestamp uint32  `json:"timestamp"`
	Noise     float64 `json:"noise"`
	Perturbed float64 `json:"perturbed"`
}

// RequestExport is the output of the request command.
type RequestExport struct {
	PeerDHPub       string  `json:"peer_dh_pub"`
	FirstUpdate     bool    `json:"first_update"`
	PrevLiquidity   uint32  `json:"prev_liquidity"`
	NoisedLiquidity float64 `json:"noised_liquidity"`
	PrevHTLCs       int     `json:"prev_htlcs"`
	PositiveHTLCs   int     `json:"positive_htlcs"`
}

// ModPowExport is the output of the modpow command.
type ModPowExport struct {
	Base     uint64 `json:"base"`
	Exponent uint64 `json:"exponent"`
	Modulus  uint64 `json:"modulus"`
	Result   uint64 `json:"result"`
}

// DecryptExport is the output of the decrypt command.
type DecryptExport struct {
	Values []uint16 `json:"values"`
	Hex    string   `json:"hex"`
}

// benchmarkKey has a modulus close to 2^64 so every product needs the
// double-width path.
var benchmarkKey = ppch.Keypair{
	PublicExponent:  65537,
	PrivateExponent: 9331878932546167513,
	Modulus:         18446743979220271189,
}

// cli carries the resolved state of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	cfg    Config
	log    *logrus.Entry
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	command := args[0]
	switch command {
	case "help", "--help", "-h":
		printUsage(stdout)
		return exitOK
	case "version", "--version":
		fmt.Fprintf(stdout, "%s version %s\n", appName, version)
		fmt.Fprintf(stdout, "ppch library version %s\n", ppch.Version)
		return exitOK
	}

	handlers := map[string]func(*cli, []string) error{
		"noise":     (*cli).handleNoise,
		"perturb":   (*cli).handlePerturb,
		"request":   (*cli).handleRequest,
		"modpow":    (*cli).handleModPow,
		"encrypt":   (*cli).handleEncrypt,
		"decrypt":   (*cli).handleDecrypt,
		"seed":      (*cli).handleSeed,
		"benchmark": (*cli).handleBenchmark,
	}
	handler, ok := handlers[command]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return exitUsage
	}

	rest := args[1:]
	if hasFlag(rest, "--help", "-h") {
		printUsage(stdout)
		return exitOK
	}

	c, err := newCLI(rest, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	start := time.Now()
	c.log = c.log.WithField("command", command)
	c.log.Debug("command started")

	if err := handler(c, rest); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		c.log.WithError(err).Error("command failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	c.log.WithField("elapsed", time.Since(start).String()).Debug("command finished")
	return exitOK
}

func newCLI(args []string, stdout, stderr io.Writer) (*cli, error) {
	cfg, err := loadConfig(getArg(args, "--config", "-c"), getArg(args, "--env-file", ""))
	if err != nil {
		return nil, err
	}

	if v := getArg(args, "--profile", "-p"); v != "" {
		cfg.Profile = v
	}
	if v := getArg(args, "--height", ""); v != "" {
		h, err := parseUint("--height", v, 8)
		if err != nil {
			return nil, err
		}
		cfg.Height = uint(h)
	}
	if v := getArg(args, "--lambda", ""); v != "" {
		l, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, usagef("invalid --lambda %q: %v", v, err)
		}
		cfg.Lambda = l
	}
	if v := getArg(args, "--log-format", ""); v != "" {
		cfg.LogFormat = v
	}

	logger, err := newLogger(cfg, stderr, hasFlag(args, "--verbose", "-v"))
	if err != nil {
		return nil, err
	}

	return &cli{
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		log:    logger.WithField("run_id", uuid.NewString()),
	}, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s - privacy-preserving payment channel hub tools

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    noise       Tree noise of a timestamp and its node cover
    perturb     Add tree noise to a cumulative value
    request     Validate hex request fields and noise the prior liquidity
    modpow      Modular exponentiation
    encrypt     Encrypt 16-bit values with a public exponent
    decrypt     Decrypt a hex ciphertext array with a private exponent
    seed        Draw a random 32-bit noise seed
    benchmark   Run performance benchmarks
    version     Show version information
    help        Show this help message

GLOBAL OPTIONS:
    -c, --config <file>      YAML configuration file
        --env-file <file>    .env file (default: .env when present)
    -p, --profile <name>     Parameter profile: tree-32, tree-16
        --height <n>         Tree height override
        --lambda <x>         Poisson mean override
        --log-format <fmt>   Log format: text, json
    -v, --verbose            Debug logging

COMMAND OPTIONS:
    noise      --timestamp <t> --seed <s>
    perturb    --value <v> --timestamp <t> --seed <s>
    request    --peer-dh-pub <hex> --encrypted-amount <hex> --encrypted-key <hex>
               --prev-liquidity <n> [--prev-htlcs <hex#hex...>] [--prev-state <hex>]
               --timestamp <t> --seed <s>
    modpow     --base <b> --exponent <e> --modulus <n>
    encrypt    [--public-exponent <e>] [--modulus <n>] (--values <a,b,...> | --hex <hex>)
               [-o, --output <file>]
    decrypt    [--private-exponent <d>] [--modulus <n>] --ciphertext <hex>
    benchmark  [-n, --iterations <n>]

Integers accept 0x and 0b prefixes. Keypair fields default to the config file.

EXAMPLES:
    %s noise --timestamp 5 --seed 7
    %s encrypt --public-exponent 17 --modulus 3233 --values 65,66
    %s decrypt --private-exponent 2753 --modulus 3233 --ciphertext 0000000000000AE6
`, appName, appName, appName, appName, appName)
}

// ============================================================================
// Noise Commands
// ============================================================================

func (c *cli) mechanism() (noise.Mechanism, ppch.NoiseParams, error) {
	params, err := c.cfg.NoiseParams()
	if err != nil {
		return noise.Mechanism{}, params, err
	}
	m, err := noise.New(params)
	return m, params, err
}

func (c *cli) timestampAndSeed(args []string) (ppch.Timestamp, ppch.Seed, error) {
	ts, err := requireUint(args, "--timestamp", "-t", 32)
	if err != nil {
		return 0, 0, err
	}
	seed, err := requireUint(args, "--seed", "-s", 32)
	if err != nil {
		return 0, 0, err
	}
	return ppch.Timestamp(ts), ppch.Seed(seed), nil
}

func (c *cli) handleNoise(args []string) error {
	ts, seed, err := c.timestampAndSeed(args)
	if err != nil {
		return err
	}
	m, params, err := c.mechanism()
	if err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"profile":   params.Profile,
		"height":    params.Height,
		"timestamp": ts,
		"seed":      redactedPlaceholder,
	}).Debug("computing tree noise")

	nodes := m.Cover(ts)
	if nodes == nil {
		nodes = []ppch.NodeID{}
	}
	return c.writeJSON(NoiseExport{
		Profile:   string(params.Profile),
		Height:    params.Height,
		Lambda:    params.Lambda,
		Timestamp: uint32(ts),
		Nodes:     nodes,
		Noise:     m.TreeNoise(ts, seed),
	})
}

func (c *cli) handlePerturb(args []string) error {
	raw := getArg(args, "--value", "")
	if raw == "" {
		return usagef("--value is required")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return usagef("invalid --value %q: %v", raw, err)
	}
	ts, seed, err := c.timestampAndSeed(args)
	if err != nil {
		return err
	}
	m, _, err := c.mechanism()
	if err != nil {
		return err
	}

	n := m.TreeNoise(ts, seed)
	return c.writeJSON(PerturbExport{
		Value:     value,
		Timestamp: uint32(ts),
		Noise:     n,
		Perturbed: value + n,
	})
}

func (c *cli) handleRequest(args []string) error {
	ts, seed, err := c.timestampAndSeed(args)
	if err != nil {
		return err
	}
	req, err := hexfield.DecodeRequest(
		getArg(args, "--peer-dh-pub", ""),
		getArg(args, "--encrypted-amount", ""),
		getArg(args, "--encrypted-key", ""),
		getArg(args, "--prev-liquidity", ""),
		getArg(args, "--prev-htlcs", ""),
		getArg(args, "--prev-state", ""),
	)
	if err != nil {
		var inErr *hexfield.InputError
		if errors.As(err, &inErr) {
			for i, field := range inErr.Fields {
				c.log.WithField("field", field).WithError(inErr.Errs[i]).Warn("invalid request field")
			}
		}
		return err
	}
	m, _, err := c.mechanism()
	if err != nil {
		return err
	}

	out := RequestExport{
		PeerDHPub:       hexfield.Encode(req.PeerDHPub),
		FirstUpdate:     len(req.PrevState) == 0,
		PrevLiquidity:   req.PrevLiquidity,
		NoisedLiquidity: m.Perturb(float64(req.PrevLiquidity), ts, seed),
		PrevHTLCs:       len(req.PrevHTLCs),
	}
	for _, htlc := range req.PrevHTLCs {
		if htlc.Positive {
			out.PositiveHTLCs++
		}
	}
	return c.writeJSON(out)
}

func (c *cli) handleSeed(args []string) error {
	seed, err := utils.RandomUint32()
	if err != nil {
		return fmt.Errorf("failed to draw seed: %w", err)
	}
	return c.writeOutput([]byte(strconv.FormatUint(uint64(seed), 10)), getArg(args, "--output", "-o"))
}

// ============================================================================
// Modular Exponentiation Commands
// ============================================================================

func (c *cli) handleModPow(args []string) error {
	base, err := requireUint(args, "--base", "-b", 64)
	if err != nil {
		return err
	}
	exp, err := requireUint(args, "--exponent", "-e", 64)
	if err != nil {
		return err
	}
	mod, err := requireUint(args, "--modulus", "-m", 64)
	if err != nil {
		return err
	}

	result, err := modexp.ModPow(base, exp, mod)
	if err != nil {
		return err
	}
	return c.writeJSON(ModPowExport{Base: base, Exponent: exp, Modulus: mod, Result: result})
}

// keypair merges the configured keypair with command flags.
func (c *cli) keypair(args []string) (ppch.Keypair, error) {
	kp := c.cfg.Keypair
	overrides := []struct {
		long string
		dst  *uint64
	}{
		{"--public-exponent", &kp.PublicExponent},
		{"--private-exponent", &kp.PrivateExponent},
		{"--modulus", &kp.Modulus},
	}
	for _, o := range overrides {
		if v := getArg(args, o.long, ""); v != "" {
			n, err := parseUint(o.long, v, 64)
			if err != nil {
				return kp, err
			}
			*o.dst = n
		}
	}
	if kp.PublicExponent != 0 && kp.PrivateExponent != 0 {
		if err := core.ValidateKeypair(kp); err != nil {
			return kp, err
		}
	}
	return kp, nil
}

func (c *cli) handleEncrypt(args []string) error {
	kp, err := c.keypair(args)
	if err != nil {
		return err
	}
	if kp.PublicExponent == 0 {
		return usagef("--public-exponent is required")
	}
	if kp.Modulus == 0 {
		return usagef("--modulus is required")
	}

	var plaintexts []uint16
	switch {
	case getArg(args, "--values", "") != "":
		plaintexts, err = parseValues(getArg(args, "--values", ""))
	case getArg(args, "--hex", "") != "":
		plaintexts, err = hexfield.DecodeUint16s(getArg(args, "--hex", ""))
	default:
		return usagef("one of --values or --hex is required")
	}
	if err != nil {
		return err
	}

	for i, p := range plaintexts {
		if p > core.MaxPlaintext(kp.Modulus) {
			c.log.WithFields(logrus.Fields{
				"index":   i,
				"modulus": kp.Modulus,
			}).Warn("plaintext not below modulus, decryption will not recover it")
		}
	}

	ciphertexts, err := modexp.Encrypt(kp, plaintexts)
	if err != nil {
		return err
	}
	c.log.WithField("count", len(ciphertexts)).Debug("encrypted values")
	return c.writeOutput([]byte(hexfield.EncodeUint64s(ciphertexts)), getArg(args, "--output", "-o"))
}

func (c *cli) handleDecrypt(args []string) error {
	kp, err := c.keypair(args)
	if err != nil {
		return err
	}
	if kp.PrivateExponent == 0 {
		return usagef("--private-exponent is required")
	}
	if kp.Modulus == 0 {
		return usagef("--modulus is required")
	}
	raw := getArg(args, "--ciphertext", "")
	if raw == "" {
		return usagef("--ciphertext is required")
	}
	ciphertexts, err := hexfield.DecodeUint64s(raw)
	if err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"count":            len(ciphertexts),
		"private_exponent": redactedPlaceholder,
	}).Debug("decrypting values")

	values, err := modexp.Decrypt(kp, ciphertexts)
	if err != nil {
		return err
	}
	return c.writeJSON(DecryptExport{Values: values, Hex: hexfield.EncodeUint16s(values)})
}

// ============================================================================
// Benchmark
// ============================================================================

func (c *cli) handleBenchmark(args []string) error {
	iterations := 1000
	if v := getArg(args, "--iterations", "-n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return usagef("invalid --iterations %q: %v", v, err)
		}
		iterations = n
	}
	if iterations < 1 {
		iterations = 1
	}

	m, params, err := c.mechanism()
	if err != nil {
		return err
	}
	seed, err := utils.RandomUint32()
	if err != nil {
		return fmt.Errorf("failed to draw seed: %w", err)
	}

	plaintexts := make([]uint16, 16)
	for i := range plaintexts {
		plaintexts[i] = uint16(i * 4099)
	}
	ciphertexts, err := modexp.Encrypt(benchmarkKey, plaintexts)
	if err != nil {
		return err
	}

	type sample struct {
		label string
		fn    func(i int) error
	}
	samples := []sample{
		{"NodeNoise", func(i int) error {
			m.NodeNoise(ppch.NodeID(i), ppch.Seed(seed))
			return nil
		}},
		{"TreeNoise", func(i int) error {
			m.TreeNoise(ppch.Timestamp(i), ppch.Seed(seed))
			return nil
		}},
		{"ModPow", func(i int) error {
			_, err := modexp.ModPow(uint64(i), benchmarkKey.PrivateExponent, benchmarkKey.Modulus)
			return err
		}},
		{"Encrypt[16]", func(int) error {
			_, err := modexp.Encrypt(benchmarkKey, plaintexts)
			return err
		}},
		{"Decrypt[16]", func(int) error {
			_, err := modexp.Decrypt(benchmarkKey, ciphertexts)
			return err
		}},
	}

	fmt.Fprintf(c.stdout, "ppch Benchmark Results\n")
	fmt.Fprintf(c.stdout, "======================\n")
	fmt.Fprintf(c.stdout, "Profile: %s (height %d, lambda %g)\n", params.Profile, params.Height, params.Lambda)
	fmt.Fprintf(c.stdout, "Iterations: %d\n\n", iterations)

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Avg").SetAlign(tabulate.MR)
	tab.Header("Total").SetAlign(tabulate.MR)

	for _, s := range samples {
		start := time.Now()
		for i := 0; i < iterations; i++ {
			if err := s.fn(i); err != nil {
				return fmt.Errorf("%s: %w", s.label, err)
			}
		}
		total := time.Since(start)

		row := tab.Row()
		row.Column(s.label)
		row.Column((total / time.Duration(iterations)).String())
		row.Column(total.String())
	}
	tab.Print(c.stdout)
	return nil
}

// ============================================================================
// Utility Functions
// ============================================================================

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

// parseUint accepts decimal, 0x, 0o and 0b forms.
func parseUint(name, s string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, usagef("invalid %s %q: %v", name, s, err)
	}
	return n, nil
}

func requireUint(args []string, long, short string, bits int) (uint64, error) {
	v := getArg(args, long, short)
	if v == "" {
		return 0, usagef("%s is required", long)
	}
	return parseUint(long, v, bits)
}

// parseValues parses a comma separated list of 16-bit values.
func parseValues(s string) ([]uint16, error) {
	parts := strings.Split(s, ",")
	if err := utils.CheckLength(len(parts), utils.MaxVectorLength); err != nil {
		return nil, err
	}
	values := make([]uint16, 0, len(parts))
	for _, p := range parts {
		n, err := parseUint("value", strings.TrimSpace(p), 16)
		if err != nil {
			return nil, err
		}
		values = append(values, uint16(n))
	}
	return values, nil
}

func (c *cli) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return c.writeOutput(data, "")
}

func (c *cli) writeOutput(data []byte, filename string) error {
	if filename == "" {
		_, err := fmt.Fprintln(c.stdout, string(data))
		return err
	}

	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	c.log.WithField("file", filename).Debug("output written")
	return nil
}
