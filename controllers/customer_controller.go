package controllers

import (
	"fmt"

	"Gin_postgres_redis_fleet_tool/app"

	"github.com/gin-gonic/gin"
)

type CustomerController struct{ *Srv }

func NewCustomerController(s *Srv) *CustomerController { return &CustomerController{Srv: s} }

// GET /customers?q=
func (cc *CustomerController) List(c *gin.Context) {
	q := c.Query("q")
	cs, err := cc.Repo.SearchCustomers(c.Request.Context(), q, 100)
	if err != nil {
		respondErr(c, err)
		return
	}
	cc.view(c, app.H{"customers": cs, "q": q})
}

// GET /customers/add
func (cc *CustomerController) AddForm(c *gin.Context) {
	cc.view(c, app.H{"form": customerForm{}})
}

// POST /customers/add
func (cc *CustomerController) Add(c *gin.Context) {
	var f customerForm
	if ve := bind(c, &f); ve.OrNil() != nil {
		invalid(c, ve, f)
		return
	}
	cust := f.toModel()
	if err := cc.Repo.CreateCustomer(c.Request.Context(), cust); err != nil {
		respondErr(c, err)
		return
	}
	cc.logActivity(c, fmt.Sprintf("Added customer %s", cust.FullName()))
	cc.done(c, "Customer added.", "/customers")
}
