package handlers_test

import (
	"net/http"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestVerifyChain_Valid() {
	suite.mockIntegrity.On("VerifyChain", mock.Anything, testTempleID).
		Return(&domain.ChainReport{TempleID: testTempleID, Valid: true, Checked: 12}, nil).Once()

	w := suite.do(http.MethodPost, "/integrity/verify", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.ChainReport
	suite.decode(w, &resp)
	suite.True(resp.Valid)
	suite.Equal(12, resp.Checked)
}

func (suite *HandlerTestSuite) TestVerifyChain_TamperReturnsReport() {
	report := &domain.ChainReport{
		TempleID: testTempleID,
		Checked:  5,
		Mismatches: []domain.ChainMismatch{
			{EntryID: 3, EntryNumber: "JE-2024-00003", ChainSeq: 3, ExpectedHash: "aaaa", StoredHash: "bbbb"},
		},
		Cascading: []domain.ChainMismatch{{EntryID: 4}, {EntryID: 5}},
	}
	suite.mockIntegrity.On("VerifyChain", mock.Anything, testTempleID).
		Return(report, &apperrors.TamperDetectedError{
			TempleID:   testTempleID,
			Mismatches: []apperrors.ChainMismatchView{{EntryID: 3, EntryNumber: "JE-2024-00003", ExpectedHash: "aaaa", StoredHash: "bbbb"}},
			Cascading:  2,
		}).Once()

	w := suite.do(http.MethodPost, "/integrity/verify", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	var body struct {
		Error  string             `json:"error"`
		Report domain.ChainReport `json:"report"`
	}
	suite.decode(w, &body)
	suite.Contains(body.Error, "#JE-2024-00003")
	suite.Require().Len(body.Report.Mismatches, 1)
	suite.Equal(int64(3), body.Report.Mismatches[0].EntryID)
	suite.Len(body.Report.Cascading, 2)
}

func (suite *HandlerTestSuite) TestIntegrityStatus_NoReportIsNotFound() {
	suite.mockIntegrity.On("LastReport", mock.Anything, testTempleID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/integrity/status", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestAuditCheck() {
	suite.mockIntegrity.On("CrossCheckAuditLog", mock.Anything, testTempleID).
		Return(&domain.AuditCheckReport{
			TempleID: testTempleID, RecordsRead: 3, EntriesChecked: 2,
			Discrepancies: []domain.AuditDiscrepancy{{EntryID: 2, EntryNumber: "JE-2024-00002", Problem: "amount differs", LogValue: "500.00", StoredValue: "5000.00"}},
		}, nil).Once()

	w := suite.do(http.MethodPost, "/integrity/audit-check", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "amount differs")
}
