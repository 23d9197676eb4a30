/*
Package loansdk is a Go client for the loan application service.

Every endpoint answers HTTP 200 with an envelope {code, msg, data,
timestamp}; the client unwraps it and turns any non-zero code into an
*APIError:

	client := loansdk.NewClient("http://localhost:5000")

	if _, err := client.Login(ctx, "alice", "Test1234"); err != nil {
		return err
	}

	staged, err := client.Apply(ctx, form, "deed.pdf", file)
	if loansdk.IsValidation(err) {
		// inspect err.(*loansdk.APIError).Errors
	}

	app, err := client.ConfirmStaged(ctx, form, staged)
*/
package loansdk
