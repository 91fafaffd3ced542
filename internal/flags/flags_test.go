package flags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"districtops/internal/model"
)

var oak = model.Address{Line: "10 Oak St", City: "Lawrence", State: "NY", Zip: "11559"}

func reg(id string, addr model.Address, inBoundary bool) model.Registration {
	return model.Registration{ID: id, StudentName: "Student " + id, Address: addr, DistrictBoundaryCheck: inBoundary}
}

func TestDetect_MultiRegistrationBoundary(t *testing.T) {
	d := NewDetector(DefaultMultiRegistrationThreshold)

	var regs []model.Registration
	for i := 1; i <= 3; i++ {
		regs = append(regs, reg(fmt.Sprint(i), oak, true))
	}
	counts := AddressCounts(regs)
	for _, r := range regs {
		assert.False(t, Has(d.Detect(r, 1, counts), MultiRegistration), "3 registrations must not flag")
	}

	regs = append(regs, reg("4", oak, true))
	counts = AddressCounts(regs)
	for _, r := range regs {
		assert.True(t, Has(d.Detect(r, 1, counts), MultiRegistration), "4 registrations must flag")
	}
}

func TestDetect_SharedAddressScenario(t *testing.T) {
	d := NewDetector(4)
	a := reg("A", oak, true)
	b := reg("B", model.Address{Line: "10 oak st", City: "lawrence", State: "NY", Zip: "11559"}, true)

	regs := []model.Registration{a, b}
	assert.Empty(t, d.Detect(a, 1, AddressCounts(regs)))

	regs = append(regs, reg("C", oak, true))
	assert.Empty(t, d.Detect(a, 1, AddressCounts(regs)), "third insert must not flag")

	regs = append(regs, reg("D", oak, true))
	counts := AddressCounts(regs)
	assert.Equal(t, []Flag{MultiRegistration}, d.Detect(a, 1, counts))
	assert.Equal(t, []Flag{MultiRegistration}, d.Detect(b, 1, counts))
}

func TestDetect_MissingDocumentsAlwaysFlags(t *testing.T) {
	d := NewDetector(4)
	cases := []model.Registration{
		reg("1", oak, true),
		reg("2", oak, false),
		{ID: "3", Status: model.StatusApproved, DistrictBoundaryCheck: true},
	}
	for _, r := range cases {
		assert.True(t, Has(d.Detect(r, 0, AddressCounts(cases)), MissingDocuments), r.ID)
	}
}

func TestDetect_Order(t *testing.T) {
	d := NewDetector(1)
	r := reg("1", oak, false)
	got := d.Detect(r, 0, AddressCounts([]model.Registration{r}))
	assert.Equal(t, []Flag{GISMismatch, MultiRegistration, MissingDocuments}, got)
	assert.Equal(t, []string{"GIS_MISMATCH", "MULTI_REGISTRATION", "MISSING_DOCUMENTS"}, Strings(got))
}

func TestNewDetector_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultMultiRegistrationThreshold, NewDetector(0).threshold)
	assert.Equal(t, 6, NewDetector(6).threshold)
}

func TestParse(t *testing.T) {
	f, ok := Parse("GIS_MISMATCH")
	assert.True(t, ok)
	assert.Equal(t, GISMismatch, f)

	_, ok = Parse("gis_mismatch")
	assert.False(t, ok)
}
