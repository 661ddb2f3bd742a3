package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contact-details/internal/form"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
	"gitlab.com/dirk.krummacker/contact-details/pkg/validation"
)

// fieldFlags maps the command line flags to the form fields.
var fieldFlags = []struct {
	flag, field, usage string
}{
	{"id", "id", "numeric id of the contact"},
	{"first", "FirstName", "first name"},
	{"last", "LastName", "last name"},
	{"email", "Email", "email address"},
	{"phone", "Phone", "phone number with 10 digits"},
}

var (
	fieldValues   = map[string]*string{}
	picturePath   string
	removePicture bool
)

func init() {
	for _, f := range fieldFlags {
		v := new(string)
		fieldValues[f.field] = v
		if f.field == "id" {
			createCmd.Flags().StringVar(v, f.flag, "", f.usage)
			continue
		}
		createCmd.Flags().StringVar(v, f.flag, "", f.usage)
		editCmd.Flags().StringVar(v, f.flag, "", f.usage)
	}
	editCmd.Flags().StringVar(&picturePath, "picture", "", "image file to use as picture")
	editCmd.Flags().BoolVar(&removePicture, "remove-picture", false, "remove the picture")
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contact",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the contact with the given id; fields without flag keep their value",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func runCreate(cmd *cobra.Command, _ []string) error {
	f := form.NewCreate(newClient(), newLogger(), nil)
	return fillAndSubmit(cmd, f)
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseId(args[0])
	if err != nil {
		return err
	}
	api := newClient()
	existing, err := api.GetContact(cmd.Context(), id)
	if err != nil {
		return err
	}
	f, err := form.NewEdit(api, newLogger(), existing, nil)
	if err != nil {
		return err
	}
	switch {
	case removePicture:
		err = f.RemovePicture()
	case picturePath != "":
		err = setPicture(f, picturePath)
	}
	if err != nil {
		return err
	}
	return fillAndSubmit(cmd, f)
}

// fillAndSubmit copies every flag given on the command line into the form and submits it.
func fillAndSubmit(cmd *cobra.Command, f *form.Form) error {
	for _, ff := range fieldFlags {
		flag := cmd.Flags().Lookup(ff.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		if _, err := f.Set(ff.field, *fieldValues[ff.field]); err != nil {
			return err
		}
	}
	saved, err := f.Submit(cmd.Context())
	if errors.Is(err, form.ErrInvalid) {
		return invalidFields(f.Errors())
	}
	if err != nil {
		return err
	}
	return printContacts(cmd.OutOrStdout(), []model.Contact{saved})
}

func setPicture(f *form.Form, path string) error {
	data, err := os.ReadFile(path) // nosemgrep
	if err != nil {
		return err
	}
	return f.SetPicture(http.DetectContentType(data), data)
}

// invalidFields joins the messages of all invalid fields, sorted by field name.
func invalidFields(errs validation.Errors) error {
	var messages []string
	for field, msg := range errs {
		if msg != "" {
			messages = append(messages, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	sort.Strings(messages)
	return errors.New(strings.Join(messages, "; "))
}
