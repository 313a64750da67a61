package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
	"github.com/voltgruppen/kalk-cli/internal/store"
	"github.com/voltgruppen/kalk-cli/pkg/crm"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "kalk.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initCatalog returns the catalog provider plus a close func.
func initCatalog(ctx context.Context) (catalog.Provider, func(), error) {
	switch cfg.Catalog.Source {
	case "fixture":
		if cfg.Catalog.Fixture == "" {
			return nil, nil, eris.New("catalog fixture path is required (KALK_CATALOG_FIXTURE)")
		}
		return catalog.NewFixtureProvider(cfg.Catalog.Fixture), func() {}, nil
	case "postgres":
		p, err := catalog.NewPostgres(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "sqlite":
		p, err := catalog.NewSQLite(cfg.Catalog.Path)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return nil, nil, eris.Errorf("unsupported catalog source: %s", cfg.Catalog.Source)
	}
}

func initSalesforce() (crm.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (KALK_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return crm.NewClient(sf), nil
}
