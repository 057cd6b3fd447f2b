// Package ofx builds shopping baskets from OFX/QFX bank statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/market-basket/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	storeNumRegex = regexp.MustCompile(`\s+#\s*\d+\s*$`)
	spaceRegex    = regexp.MustCompile(`\s+`)
)

// Parser turns statements into baskets: all purchases posted to one account
// on one day form a basket whose items are the merchants.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// entry is one purchase line of a statement.
type entry struct {
	posted   time.Time
	account  string
	merchant string
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseBaskets parses an OFX/QFX file and returns one transaction per
// account and posting day, ordered by day then account. Deposits and other
// credits are ignored.
func (p *Parser) ParseBaskets(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			entries = append(entries, p.purchases(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			entries = append(entries, p.purchases(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	baskets := groupBaskets(entries)

	slog.Info("Parsed OFX file",
		"purchases", len(entries),
		"baskets", len(baskets),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return baskets, nil
}

// purchases extracts debit lines of a transaction list.
func (p *Parser) purchases(list *ofxgo.TransactionList, accountID string) []entry {
	if list == nil {
		return nil
	}

	var entries []entry
	for _, ofxTx := range list.Transactions {
		if ofxTx.TrnAmt.Sign() >= 0 {
			continue
		}
		merchant := normalizeMerchant(p.extractMerchantName(ofxTx))
		if merchant == "" {
			slog.Debug("Skipping purchase without merchant", "fitid", ofxTx.FiTID)
			continue
		}
		entries = append(entries, entry{
			posted:   ofxTx.DtPosted.Time,
			account:  accountID,
			merchant: merchant,
		})
	}
	return entries
}

// groupBaskets collects entries sharing account and UTC posting day.
func groupBaskets(entries []entry) []model.Transaction {
	type key struct {
		day     string
		account string
	}

	items := make(map[key][]string)
	var keys []key
	for _, e := range entries {
		k := key{day: e.posted.UTC().Format(time.DateOnly), account: e.account}
		if _, ok := items[k]; !ok {
			keys = append(keys, k)
		}
		items[k] = append(items[k], e.merchant)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].account < keys[j].account
	})

	baskets := make([]model.Transaction, 0, len(keys))
	for _, k := range keys {
		baskets = append(baskets, model.NewTransaction(k.account+"/"+k.day, items[k]...))
	}
	return baskets
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// normalizeMerchant maps the spellings of one merchant onto a single item:
// processor references after '*' and trailing store numbers are dropped and
// the result is upper-cased.
func normalizeMerchant(name string) string {
	if i := strings.Index(name, "*"); i > 0 {
		name = name[:i]
	}
	name = storeNumRegex.ReplaceAllString(name, "")
	name = spaceRegex.ReplaceAllString(strings.TrimSpace(name), " ")
	return strings.ToUpper(name)
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if stmt.BankAcctFrom.AcctID != "" {
				accountMap[string(stmt.BankAcctFrom.AcctID)] = true
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			if stmt.CCAcctFrom.AcctID != "" {
				accountMap[string(stmt.CCAcctFrom.AcctID)] = true
			}
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	return accounts, nil
}
