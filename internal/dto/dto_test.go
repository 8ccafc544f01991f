package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-storefront/internal/model"
)

func TestValidatorFieldErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&RegisterForm{Username: "ab", Email: "nope", Password: "123456", ConfirmPassword: "654321"})
	require.Error(t, err)

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "Mínimo de 3 caracteres", fields["username"])
	assert.Equal(t, "Email inválido", fields["email"])
	assert.Equal(t, "As senhas não coincidem", fields["confirm_password"])
	assert.NotContains(t, fields, "password")

	assert.NoError(t, v.Validate(&RegisterForm{Username: "ana", Email: "ana@example.com", Password: "123456", ConfirmPassword: "123456"}))
}

func TestProfileFormPasswordRules(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&ProfileForm{Username: "ana"}))

	err := v.Validate(&ProfileForm{NewPassword: "abcdef", ConfirmPassword: "abcdef"})
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "Campo obrigatório", fields["current_password"])
}

func TestCheckoutEmail(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.Email("buyer@example.com"))
	assert.False(t, v.Email("buyer@"))
	assert.False(t, v.Email(""))
}

func TestParsePrice(t *testing.T) {
	for raw, want := range map[string]string{
		"19.90":    "19.9",
		"19,90":    "19.9",
		"1.234,56": "1234.56",
		"R$ 10,00": "10",
		" 0 ":      "0",
		"1000":     "1000",
	} {
		got, err := ParsePrice(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got.String(), raw)
	}

	for _, raw := range []string{"", "abc", "-5"} {
		_, err := ParsePrice(raw)
		assert.Error(t, err, raw)
	}
}

func TestProductFormInput(t *testing.T) {
	f := &ProductForm{Name: " Curso ", Price: "49,90", Status: "active", Type: "curso"}
	require.NoError(t, NewValidator().Validate(f))

	in, err := f.Input(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.ID)
	assert.Equal(t, "Curso", in.Name)
	assert.Equal(t, model.ProductCourse, in.Type)
	assert.Equal(t, "49.9", in.Price.String())

	err = NewValidator().Validate(&ProductForm{Name: "x", Price: "1", Status: "gone", Type: "curso"})
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "Valor inválido", fields["status"])
}

func TestCompraFormUpdate(t *testing.T) {
	u := (&CompraForm{PaymentStatus: "paid", MaxDownloads: "10"}).Update(4)
	require.NotNil(t, u.MaxDownloads)
	assert.Equal(t, 10, *u.MaxDownloads)
	assert.Equal(t, "paid", u.PaymentStatus)

	assert.Nil(t, (&CompraForm{}).Update(4).MaxDownloads)
}

func TestUserFormBalance(t *testing.T) {
	u, err := (&UserForm{Username: "ana", Balance: "12,50"}).Update(1)
	require.NoError(t, err)
	require.NotNil(t, u.Balance)
	assert.Equal(t, "12.5", u.Balance.String())

	u, err = (&UserForm{Username: "ana"}).Update(1)
	require.NoError(t, err)
	assert.Nil(t, u.Balance)
}
