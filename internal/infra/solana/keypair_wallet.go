// internal/infra/solana/keypair_wallet.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
)

var (
	ErrWalletNotConfigured = errors.New("keypair wallet: not configured")
	ErrInvalidKeypair      = errors.New("keypair wallet: invalid keypair")
)

// KeypairWallet はローカル鍵で署名するウォレットです（CLI / サーバー運用向け）。
// ブラウザウォレットの signAllTransactions と同じく、N 件をまとめて署名します。
type KeypairWallet struct {
	account types.Account
}

var _ appmint.Wallet = (*KeypairWallet)(nil)

func NewKeypairWallet(acc types.Account) *KeypairWallet {
	return &KeypairWallet{account: acc}
}

func (w *KeypairWallet) PublicKey() common.PublicKey {
	if w == nil {
		return common.PublicKey{}
	}
	return w.account.PublicKey
}

func (w *KeypairWallet) SignAllTransactions(ctx context.Context, txs []types.Transaction) ([]types.Transaction, error) {
	if w == nil || len(w.account.PrivateKey) == 0 {
		return nil, ErrWalletNotConfigured
	}

	out := make([]types.Transaction, 0, len(txs))
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 入力の署名スライスを書き換えない
		tx.Signatures = append([]types.Signature(nil), tx.Signatures...)

		data, err := tx.Message.Serialize()
		if err != nil {
			return nil, fmt.Errorf("keypair wallet: serialize message index=%d: %w", i, err)
		}
		if err := tx.AddSignature(w.account.Sign(data)); err != nil {
			return nil, fmt.Errorf("keypair wallet: add signature index=%d: %w", i, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// ============================================================
// Loaders
// ============================================================

// LoadWallet は secretName（Secret Manager のバージョンパス）を優先し、
// 無ければ keypairFile（solana-keygen の JSON）から鍵を復元します。
func LoadWallet(ctx context.Context, secretName, keypairFile string) (*KeypairWallet, error) {
	if s := strings.TrimSpace(secretName); s != "" {
		acc, err := LoadKeypairSecret(ctx, s)
		if err != nil {
			return nil, err
		}
		return NewKeypairWallet(acc), nil
	}
	if f := strings.TrimSpace(keypairFile); f != "" {
		acc, err := LoadKeypairFile(f)
		if err != nil {
			return nil, err
		}
		return NewKeypairWallet(acc), nil
	}
	return nil, fmt.Errorf("%w: SOLANA_WALLET_SECRET / SOLANA_WALLET_KEYPAIR_FILE not set", ErrWalletNotConfigured)
}

// LoadKeypairFile は solana-keygen 形式の keypair ファイルを読み込みます。
func LoadKeypairFile(path string) (types.Account, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair file: %w", err)
	}
	acc, err := accountFromKeypairJSON(b)
	if err != nil {
		return types.Account{}, err
	}

	log.Printf("[solana.wallet] loaded keypair from file pubkey=%s", acc.PublicKey.ToBase58())
	return acc, nil
}

// LoadKeypairSecret は
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// のような Secret Version のフルパスから keypair を復元します。
func LoadKeypairSecret(ctx context.Context, secretName string) (types.Account, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return types.Account{}, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return types.Account{}, fmt.Errorf("AccessSecretVersion: %w", err)
	}
	if resp == nil || resp.Payload == nil {
		return types.Account{}, fmt.Errorf("%w: empty secret payload", ErrInvalidKeypair)
	}

	acc, err := accountFromKeypairJSON(resp.Payload.Data)
	if err != nil {
		return types.Account{}, err
	}

	log.Printf(
		"[solana.wallet] loaded keypair from Secret Manager: secret=%s pubkey=%s",
		secretName,
		acc.PublicKey.ToBase58(),
	)
	return acc, nil
}

func accountFromKeypairJSON(data []byte) (types.Account, error) {
	keyBytes, err := decodeKeypairJSON(data)
	if err != nil {
		return types.Account{}, err
	}
	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("AccountFromBytes: %w", err)
	}
	return acc, nil
}

// decodeKeypairJSON は keypair JSON から 64 バイトの鍵配列を復元します。
// - 正: [u8;64] を []byte で受け取る
// - 互換: [int,...] を []int で受けてから []byte に変換
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err == nil {
		if len(keyBytes) == ed25519.PrivateKeySize {
			return keyBytes, nil
		}
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("%w: unmarshal keypair json: %v", ErrInvalidKeypair, err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: unexpected secret key length: got %d, want %d", ErrInvalidKeypair, len(ints), ed25519.PrivateKeySize)
	}

	keyBytes = make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte out of range at %d: %d", ErrInvalidKeypair, i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}

// EncodeKeypairJSON は solana-keygen 互換の [int,...] 形式にエンコードします。
func EncodeKeypairJSON(acc types.Account) ([]byte, error) {
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}
