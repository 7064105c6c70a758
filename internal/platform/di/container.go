// internal/platform/di/container.go
package di

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/blocto/solana-go-sdk/common"

	httpin "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/in/http"
	"github.com/Spaceman-Collective/kyogen-mint/internal/adapters/in/http/handlers"
	pgdb "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/db"
	fs "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/firestore"
	"github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/memory"
	"github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/notify"
	"github.com/Spaceman-Collective/kyogen-mint/internal/application/eligibility"
	"github.com/Spaceman-Collective/kyogen-mint/internal/application/ledger"
	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
	"github.com/Spaceman-Collective/kyogen-mint/internal/infra/config"
	"github.com/Spaceman-Collective/kyogen-mint/internal/infra/metrics"
	"github.com/Spaceman-Collective/kyogen-mint/internal/infra/solana"
)

// ========================================
// Container
// ========================================

// Container は main / CLI から使う依存オブジェクトの束です。
type Container struct {
	Config *config.Config

	// Solana
	Chain  *solana.ChainClient
	Wallet *solana.KeypairWallet

	// Application
	Ledger       *ledger.Ledger
	Refresher    *eligibility.Refresher
	Orchestrator *appmint.Orchestrator
	Viewer       *appmint.Viewer
	Policy       guarddom.SelectionPolicy

	// Outbound
	Notifications *notify.Hub
	Receipts      mintdom.ReceiptRepository
	Metrics       *metrics.MintMetrics

	db       *sql.DB
	fsClient *firestore.Client
}

// NewContainer は環境変数から設定を読み、全レイヤをつないで返します。
func NewContainer(ctx context.Context) (*Container, error) {
	return Build(ctx, config.Load())
}

// Build は cfg をもとに DI コンテナを初期化します。
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// ------------------------------------------------------------
	// 1. Solana (RPC / wallet / candy machine / guard)
	// ------------------------------------------------------------
	machineAddr, err := parseAddress("CANDY_MACHINE_ID", cfg.CandyMachineID)
	if err != nil {
		return nil, err
	}
	guard, err := config.LoadCandyGuard(cfg.CandyGuardFile, cfg.CandyGuardID)
	if err != nil {
		return nil, fmt.Errorf("load candy guard: %w", err)
	}

	wallet, err := solana.LoadWallet(ctx, cfg.WalletSecret, cfg.WalletKeypairFile)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	c.Wallet = wallet

	c.Chain = solana.NewChainClient(cfg.SolanaRPCURL, cfg.SolanaRPCRPS)
	rpc := solana.NewJSONRPCClient(cfg.SolanaRPCURL, cfg.SolanaRPCRPS)

	log.Printf(
		"[di] solana rpc=%s candyMachine=%s candyGuard=%s groups=%d wallet=%s",
		cfg.SolanaRPCURL, machineAddr.ToBase58(), guard.Address.ToBase58(), len(guard.Groups),
		wallet.PublicKey().ToBase58(),
	)

	// ------------------------------------------------------------
	// 2. Ledger / eligibility
	// ------------------------------------------------------------
	c.Ledger = ledger.New(nil)
	c.Refresher = eligibility.NewRefresher(
		eligibility.Config{
			MachineAddress: machineAddr,
			Guard:          guard,
			Owner:          wallet.PublicKey(),
		},
		solana.NewCandyMachineReader(c.Chain),
		solana.NewHoldingsReader(rpc),
		eligibility.WindowChecker{},
		c.Ledger,
	)
	c.Policy = guarddom.PolicyByName(cfg.SelectionPolicy)

	// ------------------------------------------------------------
	// 3. Receipt store
	// ------------------------------------------------------------
	receipts, err := c.openReceipts(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Receipts = receipts

	// ------------------------------------------------------------
	// 4. Mint pipeline
	// ------------------------------------------------------------
	c.Metrics = metrics.Mint()
	c.Notifications = notify.NewHub()

	assets := solana.NewAssetReader(c.Chain, cfg.MetadataTimeout)
	fetcher := appmint.NewFetcher(assets, c.Metrics)

	c.Orchestrator = appmint.NewOrchestrator(appmint.Deps{
		Ledger:    c.Ledger,
		Machines:  c.Refresher,
		Wallet:    wallet,
		Builder:   appmint.NewBuilder(solana.NewInstructionFactory(), cfg.ComputeUnits),
		Signer:    appmint.NewBatchSigner(c.Chain, wallet),
		Submitter: appmint.NewSubmitter(c.Chain, appmint.SubmissionPolicyByName(cfg.SubmissionPolicy)),
		Poller:    appmint.NewPoller(c.Chain, cfg.PollAttempts, cfg.PollInterval),
		Fetcher:   fetcher,

		Notifier: c.Notifications,
		Recheck:  c.Refresher,
		Receipts: c.Receipts,
		Observer: c.Metrics,
	})
	c.Viewer = appmint.NewViewer(fetcher, c.Notifications)

	log.Printf(
		"[di] mint pipeline ready computeUnits=%d pollAttempts=%d pollInterval=%s submission=%s selection=%s",
		cfg.ComputeUnits, cfg.PollAttempts, cfg.PollInterval, cfg.SubmissionPolicy, c.Policy.Name(),
	)
	return c, nil
}

// openReceipts は RECEIPT_STORE に応じて Receipt リポジトリを選びます。
func (c *Container) openReceipts(ctx context.Context) (mintdom.ReceiptRepository, error) {
	switch c.Config.ReceiptStore {
	case config.ReceiptStoreFirestore:
		if c.Config.FirestoreProjectID == "" {
			return nil, fmt.Errorf("RECEIPT_STORE=firestore requires FIRESTORE_PROJECT_ID")
		}
		client, err := fs.NewClient(ctx, c.Config.FirestoreProjectID)
		if err != nil {
			return nil, err
		}
		c.fsClient = client
		log.Printf("[di] receipts: firestore project=%s", c.Config.FirestoreProjectID)
		return fs.NewReceiptRepositoryFS(client), nil

	case config.ReceiptStorePostgres:
		if c.Config.DatabaseURL == "" {
			return nil, fmt.Errorf("RECEIPT_STORE=postgres requires DATABASE_URL")
		}
		db, err := pgdb.Open(ctx, c.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.db = db
		if err := pgdb.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		log.Printf("[di] receipts: postgres")
		return pgdb.NewReceiptRepositoryPG(db), nil

	case config.ReceiptStoreMemory, "":
		log.Printf("[di] receipts: memory")
		return memory.NewReceiptRepository(), nil

	default:
		return nil, fmt.Errorf("unknown RECEIPT_STORE %q", c.Config.ReceiptStore)
	}
}

// RouterDeps は HTTP ルーターに渡すハンドラ一式を組み立てます。
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		Mint:         handlers.NewMintHandler(c.Orchestrator),
		Guards:       handlers.NewGuardHandler(c.Ledger, c.Policy, c.Notifications),
		CandyMachine: handlers.NewCandyMachineHandler(c.Refresher),
		NFTs:         handlers.NewNFTHandler(c.Viewer),
		Receipts:     handlers.NewReceiptHandler(c.Receipts, c.Wallet.PublicKey().ToBase58()),
		Eligibility:  handlers.NewEligibilityHandler(c.Refresher),
	}
}

// Close は外部リソースを閉じます。
func (c *Container) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
	if c.fsClient != nil {
		_ = c.fsClient.Close()
	}
}

func parseAddress(name, v string) (common.PublicKey, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return common.PublicKey{}, fmt.Errorf("%s is required", name)
	}
	pk := common.PublicKeyFromString(v)
	if pk == (common.PublicKey{}) {
		return common.PublicKey{}, fmt.Errorf("%s: invalid address %q", name, v)
	}
	return pk, nil
}
