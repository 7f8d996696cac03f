package handlers

import (
	"net/http"
	"net/http/httptest"

	"github.com/projectplanning/planning-cloud-api/internal/dto"
)

func (suite *HandlerTestSuite) login() (dto.LoginResponse, []*http.Cookie) {
	w, env := suite.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "walter.bates",
		"password": "bpm",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp dto.LoginResponse
	env.decode(suite.T(), &resp)
	return resp, w.Result().Cookies()
}

func (suite *HandlerTestSuite) TestLogin_Success() {
	resp, cookies := suite.login()

	suite.NotEmpty(resp.Token)
	suite.Equal("walter.bates", resp.User.Username)
	suite.Equal("user", resp.User.Role)
	suite.Equal("bonita", resp.User.System)
	suite.Equal(int64(3600), resp.ExpiresIn)
	suite.NotEmpty(cookies)
}

func (suite *HandlerTestSuite) TestLogin_Failures() {
	w, env := suite.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "walter.bates",
		"password": "wrong",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("invalid username or password", env.Message)
	suite.Require().NotNil(env.Error)
	suite.Equal("INVALID_CREDENTIALS", env.Error.Code)

	w, _ = suite.do(http.MethodPost, "/auth/login", map[string]string{"username": "walter.bates"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestValidate() {
	resp, _ := suite.login()

	w, env := suite.do(http.MethodPost, "/auth/validate", map[string]string{"token": resp.Token})
	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Valid bool        `json:"valid"`
		User  dto.UserDTO `json:"user"`
	}
	env.decode(suite.T(), &body)
	suite.True(body.Valid)
	suite.Equal("walter.bates", body.User.Username)

	w, _ = suite.do(http.MethodPost, "/auth/validate", nil, "Authorization", "Bearer "+resp.Token)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodPost, "/auth/validate", map[string]string{"token": "garbage"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodPost, "/auth/validate", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestLogout_RevokesToken() {
	resp, cookies := suite.login()

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	w, env := suite.do(http.MethodPost, "/auth/validate", map[string]string{"token": resp.Token})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("invalid or expired token", env.Message)
}
