package handlers

import (
	"net/http"
)

func (suite *HandlerTestSuite) TestHealth() {
	w, env := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.True(env.Success)

	var body map[string]interface{}
	env.decode(suite.T(), &body)
	suite.Equal("ok", body["status"])
	suite.Equal("ok", body["database"])
}

func (suite *HandlerTestSuite) TestHealth_DatabaseDown() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	suite.Require().NoError(sqlDB.Close())

	w, env := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.False(env.Success)
	suite.Require().NotNil(env.Error)
	suite.Equal("SERVICE_UNAVAILABLE", env.Error.Code)
}
