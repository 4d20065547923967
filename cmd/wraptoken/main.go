// wraptoken is a command-line tool for driving a wraptoken contract over a
// local keyed store. It stands in for the chain runtime: each invocation
// opens the store, applies one contract operation as a unit of work and
// prints the result.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Incrediblez7/wrapresource/config"
	"github.com/Incrediblez7/wrapresource/internal/contract"
	"github.com/Incrediblez7/wrapresource/internal/host"
	"github.com/Incrediblez7/wrapresource/internal/log"
	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	dataDir := ""
	configFile := ""
	var auths []string

	// Scan for --datadir, --config, and --auth before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--config" && len(args) > 1:
			configFile = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--config="):
			configFile = args[0][len("--config="):]
			args = args[1:]
		case args[0] == "--auth" && len(args) > 1:
			auths = append(auths, args[1])
			args = args[2:]
		case strings.HasPrefix(args[0], "--auth="):
			auths = append(auths, args[0][len("--auth="):])
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg := loadConfig(dataDir, configFile)
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		usage()
		return
	}
	if cmd == "init" {
		cmdInit(cfg)
		return
	}

	db, err := storage.NewBadger(cfg.DBDir())
	if err != nil {
		fatal("open store: %v", err)
	}
	defer db.Close()

	env := newEnv(db, cfg, auths)

	switch cmd {
	case "account":
		cmdAccount(env, cmdArgs)
	case "create":
		cmdCreate(env, cmdArgs)
	case "issue":
		cmdIssue(env, cmdArgs)
	case "retire":
		cmdRetire(env, cmdArgs)
	case "transfer":
		cmdTransfer(env, cmdArgs)
	case "open":
		cmdOpen(env, cmdArgs)
	case "close":
		cmdClose(env, cmdArgs)
	case "balance":
		cmdBalance(env, cmdArgs)
	case "supply":
		cmdSupply(env, cmdArgs)
	case "receipts":
		cmdReceipts(env)
	case "usage":
		cmdUsage(env, cmdArgs)
	case "setusage":
		cmdSetUsage(env, cmdArgs)
	case "check":
		cmdCheck(env, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: wraptoken [global flags] <command> [args]

Global flags:
  --datadir <path>    Data directory (default: ~/.wraptoken)
  --config <path>     Config file (default: <datadir>/wraptoken.conf)
  --auth <name>       Authorize an account for this invocation (repeatable)

Each mutating command implicitly authorizes its natural actor (the sender
of a transfer, the issuer of an issue, and so on). Use --auth to add or
substitute authorizations when exercising failure paths.

Commands:
  init                            Write a default config file
  account add <name>              Register an account
  account list                    List registered accounts
  create <issuer> <max_supply>    Register a token ("461168601842738.7903 WRAM")
  issue <to> <quantity> [memo]    Mint tokens to the issuer
  retire <quantity> [memo]        Burn tokens from the issuer
  transfer <from> <to> <quantity> [memo]
                                  Move tokens; sending the primary token to
                                  the contract account wraps, sending the
                                  secondary token to it unwraps
  open <owner> <symbol> <payer>   Create a zero balance row
  close <owner> <symbol>          Erase a zero balance row
  balance <owner> <code>          Show a balance
  supply <code>                   Show supply and issuer for a token
  receipts                        List wrap/unwrap audit receipts
  usage <account>                 Show an account's resource quota bytes
  setusage <account> <bytes>      Overwrite an account's quota bytes
  check <code>                    Verify balances sum to supply
`)
}

// env bundles the open store, the simulated host and the contract for one
// invocation.
type env struct {
	db       storage.DB
	host     *host.Sim
	contract *contract.Contract
	cfg      *config.Config
	auths    []string
}

func loadConfig(dataDir, configFile string) *config.Config {
	cfg := config.Default()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	path := configFile
	if path == "" {
		path = cfg.ConfigFile()
	}
	// A missing file just means defaults.
	values, err := config.LoadFile(path)
	if err != nil {
		fatal("load config %s: %v", path, err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		fatal("apply config %s: %v", path, err)
	}
	// --datadir wins over the file.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := config.Validate(cfg); err != nil {
		fatal("config: %v", err)
	}
	return cfg
}

func newEnv(db storage.DB, cfg *config.Config, auths []string) *env {
	primary, err := types.ParseSymbol(cfg.Contract.PrimarySymbol)
	if err != nil {
		fatal("config: primary symbol: %v", err)
	}
	secondary, err := types.ParseSymbol(cfg.Contract.SecondarySymbol)
	if err != nil {
		fatal("config: secondary symbol: %v", err)
	}

	h := host.NewSim(db, types.Name(cfg.Market.Account), primary)
	h.BytesPerToken = cfg.Market.BytesPerToken

	ccfg := contract.Config{
		Account:       types.Name(cfg.Contract.Account),
		FeeAccount:    types.Name(cfg.Contract.FeeAccount),
		MarketAccount: types.Name(cfg.Market.Account),
		Primary:       primary,
		Secondary:     secondary,
	}
	if err := ccfg.Validate(); err != nil {
		fatal("config: %v", err)
	}

	for _, a := range auths {
		h.Authorize(types.Name(a))
	}
	return &env{db: db, host: h, contract: contract.New(db, h, ccfg), cfg: cfg, auths: auths}
}

// authorize grants the command's natural actor unless the caller supplied
// explicit --auth flags, which then stand alone.
func (e *env) authorize(name types.Name) {
	if len(e.auths) == 0 {
		e.host.Authorize(name)
	}
}

// ── init ────────────────────────────────────────────────────────────────

func cmdInit(cfg *config.Config) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		fatal("create datadir: %v", err)
	}
	path := cfg.ConfigFile()
	if _, err := os.Stat(path); err == nil {
		fatal("config file already exists: %s", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		fatal("write config: %v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}

// ── accounts ────────────────────────────────────────────────────────────

func cmdAccount(e *env, args []string) {
	if len(args) == 0 {
		fatal("account requires a subcommand: add or list")
	}
	switch args[0] {
	case "add":
		if len(args) != 2 {
			fatal("usage: account add <name>")
		}
		if err := e.host.AddAccount(types.Name(args[1])); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Registered %s\n", args[1])
	case "list":
		names, err := e.host.Accounts()
		if err != nil {
			fatal("%v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	default:
		fatal("unknown account subcommand: %s", args[0])
	}
}

// ── token operations ────────────────────────────────────────────────────

func cmdCreate(e *env, args []string) {
	if len(args) != 2 {
		fatal("usage: create <issuer> <max_supply>")
	}
	maxSupply, err := types.ParseAsset(args[1])
	if err != nil {
		fatal("max_supply: %v", err)
	}
	e.authorize(types.Name(e.cfg.Contract.Account))
	if err := e.contract.CreateSymbol(types.Name(args[0]), maxSupply); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Created %s, issuer %s, max supply %s\n",
		maxSupply.Symbol.Code, args[0], maxSupply)
}

func cmdIssue(e *env, args []string) {
	if len(args) < 2 || len(args) > 3 {
		fatal("usage: issue <to> <quantity> [memo]")
	}
	quantity, err := types.ParseAsset(args[1])
	if err != nil {
		fatal("quantity: %v", err)
	}
	rec, err := e.contract.SupplyRecord(quantity.Symbol.Code)
	if err != nil {
		fatal("%v", err)
	}
	e.authorize(rec.Issuer)
	if err := e.contract.Issue(types.Name(args[0]), quantity, memoArg(args, 2)); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Issued %s to %s\n", quantity, args[0])
}

func cmdRetire(e *env, args []string) {
	if len(args) < 1 || len(args) > 2 {
		fatal("usage: retire <quantity> [memo]")
	}
	quantity, err := types.ParseAsset(args[0])
	if err != nil {
		fatal("quantity: %v", err)
	}
	rec, err := e.contract.SupplyRecord(quantity.Symbol.Code)
	if err != nil {
		fatal("%v", err)
	}
	e.authorize(rec.Issuer)
	if err := e.contract.Retire(quantity, memoArg(args, 1)); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Retired %s\n", quantity)
}

func cmdTransfer(e *env, args []string) {
	if len(args) < 3 || len(args) > 4 {
		fatal("usage: transfer <from> <to> <quantity> [memo]")
	}
	quantity, err := types.ParseAsset(args[2])
	if err != nil {
		fatal("quantity: %v", err)
	}
	e.authorize(types.Name(args[0]))
	if err := e.contract.Transfer(types.Name(args[0]), types.Name(args[1]), quantity, memoArg(args, 3)); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Transferred %s from %s to %s\n", quantity, args[0], args[1])
}

func cmdOpen(e *env, args []string) {
	if len(args) != 3 {
		fatal("usage: open <owner> <symbol> <payer>")
	}
	sym, err := types.ParseSymbol(args[1])
	if err != nil {
		fatal("symbol: %v", err)
	}
	e.authorize(types.Name(args[2]))
	if err := e.contract.Open(types.Name(args[0]), sym, types.Name(args[2])); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Opened %s balance for %s\n", sym.Code, args[0])
}

func cmdClose(e *env, args []string) {
	if len(args) != 2 {
		fatal("usage: close <owner> <symbol>")
	}
	sym, err := types.ParseSymbol(args[1])
	if err != nil {
		fatal("symbol: %v", err)
	}
	e.authorize(types.Name(args[0]))
	if err := e.contract.Close(types.Name(args[0]), sym); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Closed %s balance for %s\n", sym.Code, args[0])
}

// ── queries ─────────────────────────────────────────────────────────────

func cmdBalance(e *env, args []string) {
	if len(args) != 2 {
		fatal("usage: balance <owner> <code>")
	}
	balance, err := e.contract.Balance(types.Name(args[0]), types.SymbolCode(args[1]))
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(balance)
}

func cmdSupply(e *env, args []string) {
	if len(args) != 1 {
		fatal("usage: supply <code>")
	}
	rec, err := e.contract.SupplyRecord(types.SymbolCode(args[0]))
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Supply:     %s\n", rec.Supply)
	fmt.Printf("Max supply: %s\n", rec.MaxSupply)
	fmt.Printf("Issuer:     %s\n", rec.Issuer)
}

func cmdReceipts(e *env) {
	receipts, err := e.contract.Receipts()
	if err != nil {
		fatal("%v", err)
	}
	for _, r := range receipts {
		switch r.Kind {
		case "wrap":
			fmt.Printf("%4d %s %-12s %s -> payout %s, fee %s (usage %d -> %d)\n",
				r.Seq, r.Kind, r.Account, r.Quantity, r.Payout, r.Fee,
				r.UsageBefore, r.UsageAfter)
		default:
			fmt.Printf("%4d %s %-12s %s -> refunded %s (usage %d -> %d)\n",
				r.Seq, r.Kind, r.Account, r.Quantity, r.Refunded,
				r.UsageBefore, r.UsageAfter)
		}
	}
}

func cmdUsage(e *env, args []string) {
	if len(args) != 1 {
		fatal("usage: usage <account>")
	}
	usage, err := e.host.ResourceUsage(types.Name(args[0]))
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("%d bytes\n", usage)
}

func cmdSetUsage(e *env, args []string) {
	if len(args) != 2 {
		fatal("usage: setusage <account> <bytes>")
	}
	quota, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fatal("bytes: %v", err)
	}
	if err := e.host.SetUsage(types.Name(args[0]), quota); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Set %s usage to %d bytes\n", args[0], quota)
}

func cmdCheck(e *env, args []string) {
	if len(args) != 1 {
		fatal("usage: check <code>")
	}
	if err := e.contract.CheckConservation(types.SymbolCode(args[0])); err != nil {
		fatal("%v", err)
	}
	fmt.Println("OK")
}

func memoArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
