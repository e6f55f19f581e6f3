package handlers_test

import (
	"net/http"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestImportStatement() {
	suite.mockReconService.On("ImportStatement", mock.Anything, testTempleID,
		mock.MatchedBy(func(r dto.ImportStatementRequest) bool {
			return r.AccountCode == "1200" && len(r.Rows) == 1 && r.Rows[0].Direction == "CREDIT"
		}), testActor,
	).Return(&domain.BankStatement{StatementID: 5}, nil).Once()

	w := suite.do(http.MethodPost, "/statements", gin.H{
		"accountCode": "1200",
		"periodStart": "2024-04-01",
		"periodEnd":   "2024-04-30",
		"rows": []gin.H{
			{"transactionDate": "2024-04-03", "direction": "CREDIT", "amount": "500.00", "referenceNumber": "CHQ778"},
		},
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Contains(w.Body.String(), `"statementID":5`)
}

func (suite *HandlerTestSuite) TestImportStatement_RejectsBadDirection() {
	w := suite.do(http.MethodPost, "/statements", gin.H{
		"accountCode": "1200", "periodStart": "2024-04-01", "periodEnd": "2024-04-30",
		"rows": []gin.H{{"transactionDate": "2024-04-03", "direction": "SIDEWAYS", "amount": "500.00"}},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestReconcile() {
	suite.mockReconService.On("Reconcile", mock.Anything, testTempleID, int64(5), testActor).
		Return(&domain.BankReconciliation{
			ReconciliationID: 9, StatementID: 5, Status: domain.Discrepancy,
			Difference: decimal.RequireFromString("-120.00"), MatchedCount: 4,
			ReconciledAt: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		}, nil).Once()

	w := suite.do(http.MethodPost, "/statements/5/reconcile", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.BankReconciliation
	suite.decode(w, &resp)
	suite.Equal(domain.Discrepancy, resp.Status)
	suite.True(resp.Difference.Equal(decimal.NewFromInt(-120)))
}

func (suite *HandlerTestSuite) TestGetReconciliation_NotFound() {
	suite.mockReconService.On("GetReconciliation", mock.Anything, testTempleID, int64(9)).Return(nil, apperrors.ErrNotFound).Once()

	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/reconciliations/9", nil).Code)
}

func (suite *HandlerTestSuite) TestListOutstandingItems() {
	suite.mockReconService.On("ListOutstandingItems", mock.Anything, testTempleID, "1200", false).
		Return([]domain.OutstandingItem{{ItemID: 1, ItemType: domain.ChequeNotCleared, Amount: decimal.NewFromInt(250)}}, nil).Once()

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/outstanding-items?accountCode=1200", nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/outstanding-items", nil).Code)
}

func (suite *HandlerTestSuite) TestReopenOutstandingItem() {
	suite.mockReconService.On("ReopenOutstandingItem", mock.Anything, testTempleID, int64(1), testActor).
		Return(&domain.OutstandingItem{ItemID: 1, Cleared: false}, nil).Once()

	w := suite.do(http.MethodPost, "/outstanding-items/1/reopen", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"cleared":false`)
}
