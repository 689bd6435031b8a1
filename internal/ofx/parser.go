// Package ofx imports OFX and QFX statement downloads as bank records.
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
	"github.com/shopspring/decimal"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// BankCode labels records whose institution does not identify itself.
const BankCode = "OFX"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of bare opening tags.
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

// ParseFile parses an OFX/QFX file into bank records. Negative amounts become
// debits and positive amounts credits.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.BankRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	bank := BankCode
	if org := strings.TrimSpace(string(resp.Signon.Org)); org != "" {
		bank = strings.ToUpper(org)
	}

	var records []model.BankRecord
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			records = append(records, p.convertList(stmt.BankTranList, bank, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			records = append(records, p.convertList(stmt.BankTranList, bank, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	slog.Info("Parsed OFX file",
		"records", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, bank, account string) []model.BankRecord {
	if list == nil {
		return nil
	}

	records := make([]model.BankRecord, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		record, err := p.convertTransaction(tx, bank, account)
		if err != nil {
			slog.Warn("Skipping OFX transaction",
				"fitid", tx.FiTID,
				"account", account,
				"error", err)
			continue
		}
		if record.IsEmpty() {
			continue
		}
		records = append(records, record)
	}
	return records
}

// convertTransaction converts an OFX transaction to a bank record.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, bank, account string) (model.BankRecord, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.String())
	if err != nil {
		return model.BankRecord{}, fmt.Errorf("invalid amount %s: %w", tx.TrnAmt.String(), err)
	}

	posted := tx.DtPosted.Time
	record := model.BankRecord{
		Bank:              bank,
		Account:           account,
		SerialNumber:      model.SerialPrefix(bank, account) + "_" + string(tx.FiTID),
		Date:              time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		ShortDescription:  p.extractPayeeName(tx),
		FullDescription:   strings.TrimSpace(strings.Join([]string{string(tx.Name), string(tx.Memo)}, " ")),
		CustomerReference: string(tx.CheckNum),
		BankReference:     string(tx.FiTID),
	}

	if amount.IsNegative() {
		record.Debit = amount.Abs()
	} else {
		record.Credit = amount
	}

	return record, nil
}

// extractPayeeName tries to get a clean payee name from OFX data.
func (p *Parser) extractPayeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"PRE-AUTHORIZED DEBIT ",
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

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "DEPOSIT":
		return true
	}
	return false
}

// Accounts returns the sorted account ids found in an OFX file.
func (p *Parser) Accounts(ctx context.Context, reader io.Reader) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
