// internal/infra/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Receipt store 種別
const (
	ReceiptStoreMemory    = "memory"
	ReceiptStoreFirestore = "firestore"
	ReceiptStorePostgres  = "postgres"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port string

	// Solana
	SolanaRPCURL string
	SolanaRPCRPS float64

	// Candy machine / guard
	CandyMachineID string
	CandyGuardID   string
	CandyGuardFile string

	// 署名ウォレット（Secret 優先）
	WalletKeypairFile string
	WalletSecret      string

	// Mint
	ComputeUnits     uint32
	PollAttempts     int
	PollInterval     time.Duration
	SubmissionPolicy string
	SelectionPolicy  string
	MetadataTimeout  time.Duration
	RecheckInterval  time.Duration

	// Receipts
	ReceiptStore       string
	FirestoreProjectID string
	DatabaseURL        string

	LogFile string
}

// Load は環境変数を読み込み Config を返します。
// 数値の解釈に失敗した値はログを出してデフォルトに戻します。
func Load() *Config {
	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),

		SolanaRPCURL: getenvDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		SolanaRPCRPS: getenvFloat("SOLANA_RPC_RPS", 8),

		CandyMachineID: strings.TrimSpace(os.Getenv("CANDY_MACHINE_ID")),
		CandyGuardID:   strings.TrimSpace(os.Getenv("CANDY_GUARD_ID")),
		CandyGuardFile: strings.TrimSpace(os.Getenv("CANDY_GUARD_FILE")),

		WalletKeypairFile: strings.TrimSpace(os.Getenv("SOLANA_WALLET_KEYPAIR_FILE")),
		WalletSecret:      strings.TrimSpace(os.Getenv("SOLANA_WALLET_SECRET")),

		ComputeUnits:     uint32(getenvInt("MINT_COMPUTE_UNITS", 800_000)),
		PollAttempts:     getenvInt("MINT_POLL_ATTEMPTS", 30),
		PollInterval:     getenvDuration("MINT_POLL_INTERVAL", time.Second),
		SubmissionPolicy: getenvDefault("MINT_SUBMISSION_POLICY", "last"),
		SelectionPolicy:  getenvDefault("GUARD_SELECTION_POLICY", "prefer-non-default"),
		MetadataTimeout:  getenvDuration("METADATA_HTTP_TIMEOUT", 15*time.Second),
		RecheckInterval:  getenvDuration("ELIGIBILITY_RECHECK_INTERVAL", 0),

		ReceiptStore:       strings.ToLower(getenvDefault("RECEIPT_STORE", ReceiptStoreMemory)),
		FirestoreProjectID: getenvDefault("FIRESTORE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),

		LogFile: os.Getenv("LOG_FILE"),
	}
	return cfg
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[config] WARN: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[config] WARN: invalid %s=%q, using %v", key, v, def)
		return def
	}
	return f
}

// getenvDuration は "1s" 形式のほか、単位なしの整数をミリ秒として受け付けます。
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[config] WARN: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
