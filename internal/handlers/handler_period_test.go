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

func aprilPeriod(status domain.PeriodStatus) *domain.FinancialPeriod {
	return &domain.FinancialPeriod{
		PeriodID:  3,
		YearID:    1,
		TempleID:  testTempleID,
		Name:      "Apr 2024",
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func (suite *HandlerTestSuite) TestCreateFinancialYear() {
	year := &domain.FinancialYear{YearID: 1, TempleID: testTempleID, Name: "FY 2024-25", PeriodType: domain.Quarterly}
	periods := make([]domain.FinancialPeriod, 4)
	suite.mockPeriodService.On("CreateFinancialYear", mock.Anything, testTempleID,
		dto.CreateFinancialYearRequest{StartDate: "2024-04-01", PeriodType: domain.Quarterly}, testActor,
	).Return(year, periods, nil).Once()

	w := suite.do(http.MethodPost, "/years", gin.H{"startDate": "2024-04-01", "periodType": "QUARTERLY"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.FinancialYearResponse
	suite.decode(w, &resp)
	suite.Equal("FY 2024-25", resp.Year.Name)
	suite.Len(resp.Periods, 4)
}

func (suite *HandlerTestSuite) TestCreateFinancialYear_OverlapIsConflict() {
	suite.mockPeriodService.On("CreateFinancialYear", mock.Anything, testTempleID, mock.Anything, testActor).
		Return(nil, nil, apperrors.ErrConflict).Once()

	w := suite.do(http.MethodPost, "/years", gin.H{"startDate": "2024-04-01", "periodType": "MONTHLY"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCreateFinancialYear_RejectsUnknownPeriodType() {
	w := suite.do(http.MethodPost, "/years", gin.H{"startDate": "2024-04-01", "periodType": "WEEKLY"})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListPeriods() {
	suite.mockPeriodService.On("ListPeriods", mock.Anything, testTempleID, int64(1)).
		Return([]domain.FinancialPeriod{*aprilPeriod(domain.PeriodOpen)}, nil).Once()

	w := suite.do(http.MethodGet, "/years/1/periods", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"name":"Apr 2024"`)
}

func (suite *HandlerTestSuite) TestGetPeriodForDate() {
	day := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	suite.mockPeriodService.On("GetPeriodForDate", mock.Anything, testTempleID,
		mock.MatchedBy(func(d time.Time) bool { return d.Equal(day) })).
		Return(aprilPeriod(domain.PeriodOpen), nil).Once()

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/periods?date=2024-04-15", nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/periods", nil).Code)
}

func (suite *HandlerTestSuite) TestClosePeriod_DefaultsEquityAccount() {
	closingEntryID := int64(88)
	suite.mockPeriodService.On("ClosePeriod", mock.Anything, testTempleID, int64(3), "", testActor).
		Return(&domain.PeriodClosing{
			PeriodID: 3, TotalIncome: decimal.NewFromInt(900), TotalExpense: decimal.NewFromInt(400),
			NetSurplus: decimal.NewFromInt(500), ClosingEntryID: &closingEntryID,
		}, nil).Once()

	w := suite.do(http.MethodPost, "/periods/3/close", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.PeriodClosing
	suite.decode(w, &resp)
	suite.True(resp.NetSurplus.Equal(decimal.NewFromInt(500)))
}

func (suite *HandlerTestSuite) TestClosePeriod_OpenDraftsIsConflict() {
	suite.mockPeriodService.On("ClosePeriod", mock.Anything, testTempleID, int64(3), "3100", testActor).
		Return(nil, &apperrors.OpenDraftsExistError{PeriodName: "Apr 2024", DraftCount: 2}).Once()

	w := suite.do(http.MethodPost, "/periods/3/close", gin.H{"equityAccountCode": "3100"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestOpenPeriod_LockedPeriodStaysLocked() {
	suite.mockPeriodService.On("OpenPeriod", mock.Anything, testTempleID, int64(3), testActor).
		Return(nil, &apperrors.PeriodLockedError{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), PeriodName: "Apr 2024", Status: "LOCKED"}).Once()

	w := suite.do(http.MethodPost, "/periods/3/open", nil)

	suite.Equal(http.StatusLocked, w.Code)
}

func (suite *HandlerTestSuite) TestLockPeriod() {
	suite.mockPeriodService.On("LockPeriod", mock.Anything, testTempleID, int64(3), testActor).
		Return(aprilPeriod(domain.PeriodLocked), nil).Once()

	w := suite.do(http.MethodPost, "/periods/3/lock", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"status":"LOCKED"`)
}
