package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
<FI>
<ORG>rbc
<FID>0003
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>MONTHLY PLAN FEE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>1250.40
<FITID>2024012001
<NAME>DEPOSIT
<MEMO>UBER HOLDINGS CANADA
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240121120000[0:GMT]
<TRNAMT>0.00
<FITID>2024012101
<NAME>BALANCE INQUIRY
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			records, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.expectedCount)
		})
	}
}

func TestParseBankRecords(t *testing.T) {
	parser := NewParser()
	records, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, records, 3)

	fee := records[0]
	assert.Equal(t, "RBC", fee.Bank)
	assert.Equal(t, "1234567890", fee.Account)
	assert.Equal(t, "RBC7890_2024011501", fee.SerialNumber)
	assert.Equal(t, "2024011501", fee.BankReference)
	assert.Equal(t, "MONTHLY PLAN FEE", fee.ShortDescription)
	assert.Equal(t, "MONTHLY PLAN FEE", fee.FullDescription)
	assert.True(t, decimal.RequireFromString("25.50").Equal(fee.Debit))
	assert.True(t, fee.Credit.IsZero())
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), fee.Date)
	assert.Equal(t, model.DirectionDebit, *fee.Direction())

	deposit := records[1]
	assert.Equal(t, "UBER HOLDINGS CANADA", deposit.ShortDescription)
	assert.Equal(t, "DEPOSIT UBER HOLDINGS CANADA", deposit.FullDescription)
	assert.True(t, decimal.RequireFromString("1250.40").Equal(deposit.Credit))
	assert.True(t, deposit.Debit.IsZero())

	check := records[2]
	assert.Equal(t, "1234", check.CustomerReference)
	assert.True(t, decimal.RequireFromString("500").Equal(check.Debit))
}

func TestParseCreditCardRecords(t *testing.T) {
	parser := NewParser()
	records, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, BankCode, records[0].Bank)
	assert.Equal(t, "OFX1111_CC2024011001", records[0].SerialNumber)
	assert.Equal(t, "4111111111111111", records[0].Account)
	assert.True(t, decimal.RequireFromString("45.99").Equal(records[0].Debit))
	assert.Equal(t, "NETFLIX.COM", records[1].Description())
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractPayeeName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		expected string
	}{
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE HUNGRYPANDA",
			expected: "HUNGRYPANDA",
		},
		{
			name:     "remove pre-authorized prefix",
			input:    "PRE-AUTHORIZED DEBIT ENBRIDGE GAS",
			expected: "ENBRIDGE GAS",
		},
		{
			name:     "keep clean name",
			input:    "OPENTABLE INC",
			expected: "OPENTABLE INC",
		},
		{
			name:     "generic name uses memo",
			input:    "PAYMENT",
			memo:     "SHAW CABLESYSTEMS",
			expected: "SHAW CABLESYSTEMS",
		},
		{
			name:     "strip posting date",
			input:    "08/04 FANTUAN DELIVERY",
			expected: "FANTUAN DELIVERY",
		},
		{
			name:     "trim whitespace",
			input:    "  CLOVER FEES  ",
			expected: "CLOVER FEES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			assert.Equal(t, tt.expected, parser.extractPayeeName(tx))
		})
	}
}

func TestAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.Accounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.Accounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
