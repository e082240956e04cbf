package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/catalog"
	"github.com/TableAdmin-lab/productloaderV2/internal/config"
	"github.com/TableAdmin-lab/productloaderV2/internal/connectors"
	gmailconnector "github.com/TableAdmin-lab/productloaderV2/internal/connectors/gmail"
	imapconnector "github.com/TableAdmin-lab/productloaderV2/internal/connectors/imap"
	"github.com/TableAdmin-lab/productloaderV2/internal/export"
	"github.com/TableAdmin-lab/productloaderV2/internal/ingest"
	"github.com/TableAdmin-lab/productloaderV2/internal/listener"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "defaults:set":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name stamped on every catalog row")
		definePLU := fs.String("define-plu", "no", "yes|no, whether products carry custom PLUs")
		_ = fs.Parse(os.Args[2:])
		session := loadSession(db)
		must(session.SetDefaults(*site, *definePLU))
		fmt.Printf("defaults set site=%s definePlu=%s\n", session.State().SessionSite, *definePLU)
	case "menu:extract":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "menu file (image, pdf or html)")
		out := fs.String("out", "", "optional path for the extracted items json")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		content, err := os.ReadFile(*input)
		must(err)
		svc := ingest.NewService(cfg)
		result := svc.Extract(context.Background(), filepath.Base(*input), "", content)
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		menuID, err := db.InsertMenu(nil, filepath.Base(*input), "upload", result.Items)
		must(err)
		if strings.TrimSpace(*out) != "" {
			data, err := json.MarshalIndent(result.Items, "", "  ")
			must(err)
			must(os.WriteFile(*out, data, 0o644))
		}
		fmt.Printf("extraction done menuId=%d items=%d\n", menuID, len(result.Items))
	case "product:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "json file with the product submission")
		allowZero := fs.Bool("allow-zero", false, "accept variants with a 0.00 selling price")
		_ = fs.Parse(os.Args[2:])
		sub, err := readSubmission(*file)
		must(err)
		session := loadSession(db)
		rows, err := session.AddProduct(sub, *allowZero)
		if errors.Is(err, catalog.ErrZeroPriceVariant) {
			must(fmt.Errorf("%w (rerun with --allow-zero to accept)", err))
		}
		must(err)
		fmt.Printf("product added rows=%d nextPlu=%d\n", len(rows), session.State().PLUCounter)
	case "product:update":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		group := fs.String("group", "", "product group id")
		file := fs.String("file", "", "json file with the product submission")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*group) == "" {
			must(fmt.Errorf("--group is required"))
		}
		sub, err := readSubmission(*file)
		must(err)
		session := loadSession(db)
		rows, err := session.UpdateProduct(*group, sub)
		must(err)
		fmt.Printf("product updated group=%s rows=%d\n", *group, len(rows))
	case "product:remove":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		group := fs.String("group", "", "product group id")
		yes := fs.Bool("yes", false, "remove without confirmation")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*group) == "" {
			must(fmt.Errorf("--group is required"))
		}
		session := loadSession(db)
		related := session.RelatedCount(*group)
		if related == 0 {
			must(fmt.Errorf("no product with group id %q", *group))
		}
		if !*yes {
			fmt.Printf("group %s has %d related row(s); rerun with --yes to remove them\n", *group, related)
			return
		}
		removed, err := session.RemoveGroup(*group)
		must(err)
		fmt.Printf("removed %d row(s) from group %s\n", removed, *group)
	case "product:list":
		session := loadSession(db)
		products := session.Products()
		for _, p := range products {
			fmt.Printf("%s\t%s\t%.2f\t%s\n", p.ProductPLU, p.NameAndVariant, p.SellingPrice, p.OriginalType)
		}
		fmt.Printf("total products=%d\n", len(products))
	case "modifier:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "modifier group name")
		options := fs.String("options", "", "comma separated Name=Price pairs, e.g. Bacon=15,Avo=22")
		_ = fs.Parse(os.Args[2:])
		opts, err := parseModifierOptions(*options)
		must(err)
		session := loadSession(db)
		must(session.AddModifierGroup(*name, opts))
		fmt.Printf("modifier group added name=%s options=%d\n", strings.TrimSpace(*name), len(opts))
	case "modifier:remove":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "modifier group name")
		_ = fs.Parse(os.Args[2:])
		session := loadSession(db)
		must(session.RemoveModifierGroup(*name))
		fmt.Printf("modifier group removed name=%s\n", *name)
	case "modifier:list":
		session := loadSession(db)
		for _, g := range session.ModifierGroups() {
			fmt.Printf("%s\n", g.GroupName)
			for _, opt := range g.Options {
				fmt.Printf("  %s (%.2f)\n", opt.Name, opt.Price)
			}
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", cfg.OutputDir, "output directory")
		_ = fs.Parse(os.Args[2:])
		session := loadSession(db)
		path, err := export.WriteFile(session.State(), *dir)
		must(err)
		fmt.Printf("exported %d product(s) to %s\n", len(session.Products()), path)
	case "state:clear":
		session := loadSession(db)
		must(session.Clear())
		fmt.Printf("session cleared\n")
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.MailListenerLabel, "mailbox/label")
		max := fs.Int("max", cfg.MailListenerFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", cfg.MailListenerBatch, "batch size")
		_ = fs.Parse(os.Args[2:])
		svc := listener.NewService(db, cfg)
		processed, menus, err := svc.ProcessPending(context.Background(), *batch)
		must(err)
		fmt.Printf("processed pending emails=%d menus=%d\n", processed, menus)
	case "mail:listen":
		svc := listener.NewService(db, cfg)
		must(svc.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func loadSession(db *storage.DB) *catalog.Session {
	session, err := catalog.Load(db)
	must(err)
	return session
}

func readSubmission(file string) (internal.ProductSubmission, error) {
	var sub internal.ProductSubmission
	if strings.TrimSpace(file) == "" {
		return sub, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return sub, err
	}
	if err := json.Unmarshal(data, &sub); err != nil {
		return sub, fmt.Errorf("parse submission: %w", err)
	}
	return sub, nil
}

func parseModifierOptions(spec string) ([]internal.ModifierOption, error) {
	var opts []internal.ModifierOption
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, priceStr, _ := strings.Cut(pair, "=")
		var price float64
		if strings.TrimSpace(priceStr) != "" {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid option price in %q", pair)
			}
			price = parsed
		}
		opts = append(opts, internal.ModifierOption{Name: strings.TrimSpace(name), Price: price})
	}
	return opts, nil
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: productloader <command>")
	fmt.Println("commands:")
	fmt.Println("  defaults:set --site=... --define-plu=yes|no")
	fmt.Println("  menu:extract --input=menu.jpg [--out=items.json]")
	fmt.Println("  product:add --file=submission.json [--allow-zero]")
	fmt.Println("  product:update --group=1001 --file=submission.json")
	fmt.Println("  product:remove --group=1001 [--yes]")
	fmt.Println("  product:list")
	fmt.Println("  modifier:add --name=Extras --options=Bacon=15,Avo=22")
	fmt.Println("  modifier:remove --name=Extras")
	fmt.Println("  modifier:list")
	fmt.Println("  export:xlsx [--dir=./out]")
	fmt.Println("  state:clear")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process [--batch=20]")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
