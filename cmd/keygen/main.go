// cmd/keygen/main.go
//
// ミント用の署名ウォレットを生成する小さなツールです。
// - Solana 互換の ed25519 keypair を生成
// - 公開鍵を base58 で表示（mint を実行するウォレットのアドレス）
// - 秘密鍵を solana-keygen 互換の JSON 配列としてファイルに保存
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/Spaceman-Collective/kyogen-mint/internal/infra/solana"
)

func main() {
	out := flag.String("out", "kyogen-mint-wallet.json", "output keypair file")
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Parse()

	if _, err := os.Stat(*out); err == nil && !*force {
		log.Fatalf("%s already exists (use -force to overwrite)", *out)
	}

	acc := types.NewAccount()

	data, err := solana.EncodeKeypairJSON(acc)
	if err != nil {
		log.Fatalf("failed to encode keypair json: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}

	fmt.Println("============================================")
	fmt.Println("✅ Mint wallet generated")
	fmt.Println("============================================")
	fmt.Printf("Public Key:\n  %s\n\n", acc.PublicKey.ToBase58())
	fmt.Printf("Secret key file (SOLANA_WALLET_KEYPAIR_FILE):\n  %s\n\n", *out)
	fmt.Println("⚠ IMPORTANT:")
	fmt.Println("  - この JSON ファイルは Git にコミットしないでください。")
	fmt.Println("  - 本番では Secret Manager に登録し SOLANA_WALLET_SECRET で参照してください。")
}
