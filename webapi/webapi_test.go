package webapi_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	"github.com/google/uuid"

	infrabus "github.com/mhasanin/digibank/infra/eventbus"
	"github.com/mhasanin/digibank/pkg/app"
	"github.com/mhasanin/digibank/pkg/config"
	accountdomain "github.com/mhasanin/digibank/pkg/domain/account"
	carddomain "github.com/mhasanin/digibank/pkg/domain/card"
	userdomain "github.com/mhasanin/digibank/pkg/domain/user"
	"github.com/mhasanin/digibank/pkg/testutils"
	"github.com/mhasanin/digibank/pkg/utils"
	"github.com/mhasanin/digibank/webapi"
	"github.com/mhasanin/digibank/webapi/common"
)

type WebAPITestSuite struct {
	suite.Suite
	app      *fiber.App
	uow      *testutils.FakeUoW
	customer *userdomain.User
	admin    *userdomain.User
}

func (s *WebAPITestSuite) SetupSuite() {
	s.uow = testutils.NewFakeUoW()
	logger := testutils.DiscardLogger()
	bus := infrabus.NewMemoryBus(logger)

	cfg := &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour, ATMExpiry: 10 * time.Minute}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Otp:       &config.Otp{TTL: 5 * time.Minute},
	}

	deps := &app.Deps{Uow: s.uow, EventBus: bus, Logger: logger}
	s.app = webapi.SetupApp(app.New(deps, cfg))

	customer, err := userdomain.NewWithRole("customer", "customer@example.com", "secret1", userdomain.RoleCustomer)
	s.Require().NoError(err)
	s.uow.SeedUser(customer)
	s.customer = customer

	admin, err := userdomain.NewWithRole("admin", "admin@example.com", "secret1", userdomain.RoleAdmin)
	s.Require().NoError(err)
	s.uow.SeedUser(admin)
	s.admin = admin
}

// makeRequest posts JSON and returns the response.
func (s *WebAPITestSuite) makeRequest(method, target, body, token string) *http.Response {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, 10_000)
	s.Require().NoError(err)
	return resp
}

func (s *WebAPITestSuite) login(identity, password string) string {
	resp := s.makeRequest("POST", "/auth/login",
		`{"identity":"`+identity+`","password":"`+password+`"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var body common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	data, ok := body.Data.(map[string]any)
	s.Require().True(ok)
	token, ok := data["token"].(string)
	s.Require().True(ok)
	s.Require().NotEmpty(token)
	return token
}

func (s *WebAPITestSuite) TestHealth() {
	resp := s.makeRequest("GET", "/", "", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)
}

func (s *WebAPITestSuite) TestLogin() {
	token := s.login("customer", "secret1")
	s.NotEmpty(token)
}

func (s *WebAPITestSuite) TestLoginWrongPassword() {
	resp := s.makeRequest("POST", "/auth/login",
		`{"identity":"customer","password":"wrong"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)

	var problem common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	s.Equal(fiber.StatusUnauthorized, problem.Status)
}

func (s *WebAPITestSuite) TestLoginValidation() {
	resp := s.makeRequest("POST", "/auth/login", `{"identity":"x"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *WebAPITestSuite) TestProtectedWithoutToken() {
	resp := s.makeRequest("GET", "/user/me", "", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *WebAPITestSuite) TestCustomerCannotReachAdminSurface() {
	token := s.login("customer", "secret1")
	resp := s.makeRequest("GET", "/admin/users", "", token)
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
}

func (s *WebAPITestSuite) TestAdminListUsers() {
	token := s.login("admin", "secret1")
	resp := s.makeRequest("GET", "/admin/users", "", token)
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)
}

func (s *WebAPITestSuite) TestSignupAndMe() {
	resp := s.makeRequest("POST", "/user/signup",
		`{"username":"fresh","email":"fresh@example.com","password":"secret1"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusCreated, resp.StatusCode)

	// Unverified users cannot log in yet.
	loginResp := s.makeRequest("POST", "/auth/login",
		`{"identity":"fresh","password":"secret1"}`, "")
	defer loginResp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusUnauthorized, loginResp.StatusCode)
}

func (s *WebAPITestSuite) TestTransferEchoesBothAccounts() {
	sender, err := accountdomain.New().
		WithUserID(s.customer.ID).
		WithType(accountdomain.TypeCurrent).
		WithBalance(50_000).
		Build()
	s.Require().NoError(err)
	s.uow.SeedAccount(sender)

	c := carddomain.NewCard(s.customer.ID, sender.ID)
	c.Status = carddomain.StatusActive
	hash, err := utils.HashPIN("1234")
	s.Require().NoError(err)
	c.PINHash = hash
	s.uow.SeedCard(c)

	receiver, err := accountdomain.New().WithUserID(uuid.New()).WithBalance(1_000).Build()
	s.Require().NoError(err)
	s.uow.SeedAccount(receiver)

	token := s.login("customer", "secret1")
	resp := s.makeRequest("POST", "/account/"+sender.ID.String()+"/transfer",
		`{"receiver_number":"`+receiver.Number+`","amount":5000,"pin":"1234"}`, token)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var body common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	data, ok := body.Data.(map[string]any)
	s.Require().True(ok)

	senderBody, ok := data["sender"].(map[string]any)
	s.Require().True(ok)
	s.Equal(sender.Number, senderBody["number"])
	s.EqualValues(45_000, senderBody["balance"])

	receiverBody, ok := data["receiver"].(map[string]any)
	s.Require().True(ok)
	s.Equal(receiver.Number, receiverBody["number"])
	s.EqualValues(6_000, receiverBody["balance"])

	s.NotNil(data["debit"])
	s.NotNil(data["credit"])
	s.EqualValues(accountdomain.DailyDebitLimitCurrent-5_000, data["daily_remaining"])
}

func TestWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(WebAPITestSuite))
}
