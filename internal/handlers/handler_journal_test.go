package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func postedEntry(id int64, number string) *domain.JournalEntry {
	now := time.Date(2024, 4, 5, 10, 30, 0, 0, time.UTC)
	return &domain.JournalEntry{
		EntryID:       id,
		TempleID:      testTempleID,
		EntryNumber:   number,
		EntryDate:     time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		Narration:     "Hundi collection",
		Reference:     domain.Reference{Kind: "DONATION", ID: "D-17"},
		TotalAmount:   decimal.RequireFromString("500.00"),
		Status:        domain.Posted,
		IntegrityHash: "3f1c",
		PostedBy:      testActor,
		PostedAt:      &now,
		AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: testActor, LastUpdatedAt: now, LastUpdatedBy: testActor},
		Lines: []domain.JournalLine{
			{LineID: 1, LineNo: 1, AccountID: 7, Debit: decimal.RequireFromString("500.00"), Credit: decimal.Zero},
			{LineID: 2, LineNo: 2, AccountID: 9, Debit: decimal.Zero, Credit: decimal.RequireFromString("500.00")},
		},
	}
}

func hundiTransaction() gin.H {
	return gin.H{
		"entryDate": "2024-04-05",
		"narration": "Hundi collection",
		"reference": gin.H{"kind": "DONATION", "id": "D-17"},
		"lines": []gin.H{
			{"accountCode": "1000", "debit": "500.00"},
			{"accountCode": "4000", "credit": "500.00"},
		},
	}
}

func (suite *HandlerTestSuite) TestPostTransaction_Success() {
	suite.mockJournalService.On("PostTransaction", mock.Anything, testTempleID,
		mock.MatchedBy(func(r dto.PostTransactionRequest) bool {
			return len(r.Lines) == 2 && r.Lines[0].Debit.Equal(decimal.NewFromInt(500)) && r.Reference.Kind == "DONATION"
		}), testActor,
	).Return(postedEntry(42, "JE-2024-00042"), nil).Once()

	w := suite.do(http.MethodPost, "/journal", hundiTransaction())

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.JournalEntryResponse
	suite.decode(w, &resp)
	suite.Equal("JE-2024-00042", resp.EntryNumber)
	suite.Equal("2024-04-05", resp.EntryDate)
	suite.Len(resp.Lines, 2)
}

func (suite *HandlerTestSuite) TestPostTransaction_UnbalancedReportsImbalance() {
	suite.mockJournalService.On("PostTransaction", mock.Anything, testTempleID, mock.Anything, testActor).
		Return(nil, &apperrors.UnbalancedEntryError{
			TotalDebit:  decimal.RequireFromString("1500.00"),
			TotalCredit: decimal.RequireFromString("1499.50"),
		}).Once()

	w := suite.do(http.MethodPost, "/journal", hundiTransaction())

	suite.Equal(http.StatusBadRequest, w.Code)
	var body map[string]string
	suite.decode(w, &body)
	suite.Equal("0.50", body["imbalance"])
	suite.Equal("1500.00", body["totalDebit"])
}

func (suite *HandlerTestSuite) TestPostTransaction_ClosedPeriodIsLocked() {
	suite.mockJournalService.On("PostTransaction", mock.Anything, testTempleID, mock.Anything, testActor).
		Return(nil, &apperrors.PeriodLockedError{
			Date: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC), PeriodName: "Apr 2024", Status: "CLOSED",
		}).Once()

	w := suite.do(http.MethodPost, "/journal", hundiTransaction())

	suite.Equal(http.StatusLocked, w.Code)
	suite.Contains(w.Body.String(), "period Apr 2024 is CLOSED")
}

func (suite *HandlerTestSuite) TestPostTransaction_SingleLineFailsBinding() {
	body := hundiTransaction()
	body["lines"] = []gin.H{{"accountCode": "1000", "debit": "500.00"}}

	w := suite.do(http.MethodPost, "/journal", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestPostTransaction_InternalErrorIsMasked() {
	suite.mockJournalService.On("PostTransaction", mock.Anything, testTempleID, mock.Anything, testActor).
		Return(nil, apperrors.NewAppError(500, "failed to commit transaction", nil)).Once()

	w := suite.do(http.MethodPost, "/journal", hundiTransaction())

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.JSONEq(`{"error":"Failed to post transaction"}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestSaveDraft_BuildsBuilderFromRequest() {
	suite.mockJournalService.On("SaveDraft", mock.Anything,
		mock.MatchedBy(func(b domain.EntryBuilder) bool {
			return b.TempleID == testTempleID && b.DraftID == 12 && b.Actor == testActor &&
				len(b.Lines) == 1 && b.Lines[0].InstrumentRef == "CHQ778" &&
				b.EntryDate.Equal(time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC))
		}),
	).Return(&domain.JournalEntry{EntryID: 12, TempleID: testTempleID, Status: domain.Draft,
		EntryDate: time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC), TotalAmount: decimal.NewFromInt(250)}, nil).Once()

	w := suite.do(http.MethodPost, "/journal/drafts", gin.H{
		"draftID":   12,
		"entryDate": "2024-04-06",
		"narration": "Pooja kit purchase",
		"lines":     []gin.H{{"accountCode": "5000", "debit": "250.00", "instrumentRef": "CHQ778"}},
	})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.JournalEntryResponse
	suite.decode(w, &resp)
	suite.Equal(domain.Draft, resp.Status)
	suite.Empty(resp.EntryNumber)
}

func (suite *HandlerTestSuite) TestPostDraft_WithAndWithoutBody() {
	suite.mockJournalService.On("PostDraft", mock.Anything, testTempleID, int64(12), testActor, false).
		Return(postedEntry(12, "JE-2024-00043"), nil).Once()
	suite.mockJournalService.On("PostDraft", mock.Anything, testTempleID, int64(13), testActor, true).
		Return(postedEntry(13, "JE-2024-00044"), nil).Once()

	w := suite.do(http.MethodPost, "/journal/12/post", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/journal/13/post", gin.H{"adminOverride": true})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestDiscardDraft_PostedEntryIsConflict() {
	suite.mockJournalService.On("DiscardDraft", mock.Anything, testTempleID, int64(42), testActor).
		Return(apperrors.ErrConflict).Once()

	w := suite.do(http.MethodDelete, "/journal/42", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCancelEntry_AlreadyCancelled() {
	suite.mockJournalService.On("Cancel", mock.Anything, testTempleID, int64(42), testActor, "duplicate receipt").
		Return(nil, &apperrors.AlreadyCancelledError{EntryNumber: "JE-2024-00042", Status: "CANCELLED"}).Once()

	w := suite.do(http.MethodPost, "/journal/42/cancel", gin.H{"reason": "duplicate receipt"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCancelEntry_ReasonRequired() {
	w := suite.do(http.MethodPost, "/journal/42/cancel", gin.H{})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestReverseEntry_PassesDate() {
	reversalDate := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	reversal := postedEntry(43, "JE-2024-00043")
	originalID := int64(42)
	reversal.ReversalOfID = &originalID
	suite.mockJournalService.On("Reverse", mock.Anything, testTempleID, int64(42),
		mock.MatchedBy(func(d *time.Time) bool { return d != nil && d.Equal(reversalDate) }),
		testActor, "wrong head",
	).Return(reversal, nil).Once()

	w := suite.do(http.MethodPost, "/journal/42/reverse", gin.H{"reason": "wrong head", "entryDate": "2024-04-10"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.JournalEntryResponse
	suite.decode(w, &resp)
	suite.Require().NotNil(resp.ReversalOfID)
	suite.Equal(int64(42), *resp.ReversalOfID)
}

func (suite *HandlerTestSuite) TestReverseEntry_DefaultsDateToNil() {
	suite.mockJournalService.On("Reverse", mock.Anything, testTempleID, int64(42), (*time.Time)(nil), testActor, "wrong head").
		Return(postedEntry(43, "JE-2024-00043"), nil).Once()

	w := suite.do(http.MethodPost, "/journal/42/reverse", gin.H{"reason": "wrong head"})

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestGetEntry() {
	suite.mockJournalService.On("GetEntry", mock.Anything, testTempleID, int64(42)).Return(postedEntry(42, "JE-2024-00042"), nil).Once()
	suite.mockJournalService.On("GetEntry", mock.Anything, testTempleID, int64(99)).Return(nil, apperrors.ErrNotFound).Once()

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/journal/42", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/journal/99", nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/journal/abc", nil).Code)
}

func (suite *HandlerTestSuite) TestListEntries_BindsFilters() {
	token := "eyJvZmZzZXQiOjIwfQ"
	suite.mockJournalService.On("ListEntries", mock.Anything, testTempleID,
		mock.MatchedBy(func(p dto.ListEntriesParams) bool {
			return p.Status == "POSTED" && p.From == "2024-04-01" && p.Limit == 20 && p.NextToken != nil && *p.NextToken == token
		}),
	).Return(&dto.ListEntriesResponse{Entries: []dto.JournalEntryResponse{}}, nil).Once()

	w := suite.do(http.MethodGet, "/journal?status=POSTED&from=2024-04-01&nextToken="+token, nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestListEntries_RejectsUnknownStatus() {
	w := suite.do(http.MethodGet, "/journal?status=PENDING", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestTrialBalance_SplitsColumns() {
	suite.mockJournalService.On("GetTrialBalance", mock.Anything, testTempleID, mock.AnythingOfType("*time.Time")).
		Return([]domain.AccountBalance{
			{AccountID: 7, Code: "1000", AccountType: domain.Asset, TotalDebit: decimal.NewFromInt(800), TotalCredit: decimal.NewFromInt(300)},
			{AccountID: 9, Code: "4000", AccountType: domain.Income, TotalDebit: decimal.Zero, TotalCredit: decimal.NewFromInt(500)},
		}, nil).Once()

	w := suite.do(http.MethodGet, "/trial-balance?asOf=2024-04-30", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TrialBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2024-04-30", resp.AsOf)
	suite.Require().Len(resp.Rows, 2)
	suite.True(resp.Rows[0].Debit.Equal(decimal.NewFromInt(500)))
	suite.True(resp.Rows[1].Credit.Equal(decimal.NewFromInt(500)))
	suite.True(resp.TotalDebit.Equal(resp.TotalCredit))
}
