package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage jobs and their revisions",
}

var jobCreateCmd = &cobra.Command{
	Use:   "create [order-id] [service-id]",
	Short: "Create a job for a service on an order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		note, _ := cmd.Flags().GetString("note")
		deadline, _ := cmd.Flags().GetString("deadline")

		due, err := optionalTime(deadline)
		if err != nil {
			return err
		}
		job, err := wire.JobService().CreateJob(NewContext(), primary.CreateJobRequest{
			RepairOrderID: args[0],
			ServiceID:     args[1],
			Name:          name,
			Note:          note,
			Deadline:      due,
		})
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		fmt.Printf("%s Created job %s: %s (%s)\n", okMark, job.ID, job.Name, money.Format(job.TotalAmountCents))
		return nil
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list [order-id]",
	Short: "List the jobs of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := wire.JobService().ListJobs(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTOTAL\tREV\tTECHNICIANS")
		fmt.Fprintln(w, "--\t----\t------\t-----\t---\t-----------")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				j.ID, j.Name, j.Status, money.Format(j.TotalAmountCents), j.RevisionCount, orDash(strings.Join(j.TechnicianIDs, ",")))
		}
		w.Flush()
		return nil
	},
}

var jobStatusCmd = &cobra.Command{
	Use:   "status [job-id] [pending|in_progress|on_hold|completed|cancelled]",
	Short: "Change the status of a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.JobService().ChangeStatus(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}
		fmt.Printf("%s Job %s is now %s\n", okMark, args[0], args[1])
		return nil
	},
}

var jobReviseCmd = &cobra.Command{
	Use:   "revise [job-id]",
	Short: "Create a new revision of the latest version of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		job, err := wire.JobService().Revise(NewContext(), args[0], reason)
		if err != nil {
			return fmt.Errorf("failed to revise job: %w", err)
		}
		fmt.Printf("%s Created revision %s (rev %d of %s)\n", okMark, job.ID, job.RevisionCount, job.OriginalJobID)
		return nil
	},
}

var jobHistoryCmd = &cobra.Command{
	Use:   "history [job-id]",
	Short: "Show the revision chain of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.OrderAdapter().JobHistory(NewContext(), args[0])
		return err
	},
}

var jobAssignCmd = &cobra.Command{
	Use:   "assign [job-id] [technician-id]",
	Short: "Assign a technician to a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.JobService().AssignTechnician(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to assign technician: %w", err)
		}
		fmt.Printf("%s Technician %s assigned to %s\n", okMark, args[1], args[0])
		return nil
	},
}

var jobAddPartCmd = &cobra.Command{
	Use:   "add-part [job-id] [part-id] [quantity]",
	Short: "Add a part to a job at catalog price",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty := 1
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			qty = n
		}
		job, err := wire.JobService().AddPart(NewContext(), args[0], args[1], qty)
		if err != nil {
			return fmt.Errorf("failed to add part: %w", err)
		}
		fmt.Printf("%s Added %d x %s; job total is now %s\n", okMark, qty, args[1], money.Format(job.TotalAmountCents))
		return nil
	},
}

var jobRepairCmd = &cobra.Command{
	Use:   "repair [job-id] [technician-id]",
	Short: "Record repair work by an assigned technician",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		notes, _ := cmd.Flags().GetString("notes")
		started, _ := cmd.Flags().GetString("started")
		completed, _ := cmd.Flags().GetString("completed")
		minutes, _ := cmd.Flags().GetInt("minutes")

		startedAt, err := optionalTime(started)
		if err != nil {
			return err
		}
		completedAt, err := optionalTime(completed)
		if err != nil {
			return err
		}
		err = wire.JobService().RecordRepair(NewContext(), primary.RecordRepairRequest{
			JobID:            args[0],
			TechnicianID:     args[1],
			Description:      description,
			Notes:            notes,
			StartedAt:        startedAt,
			CompletedAt:      completedAt,
			EstimatedMinutes: minutes,
		})
		if err != nil {
			return fmt.Errorf("failed to record repair: %w", err)
		}
		fmt.Printf("%s Repair recorded on %s\n", okMark, args[0])
		return nil
	},
}

var jobDeleteCmd = &cobra.Command{
	Use:   "delete [job-id]",
	Short: "Delete a job that has no revisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.JobService().DeleteJob(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		fmt.Printf("%s Deleted job %s\n", okMark, args[0])
		return nil
	},
}

func init() {
	jobCreateCmd.Flags().String("name", "", "Job name (defaults to the service name)")
	jobCreateCmd.Flags().String("note", "", "Note")
	jobCreateCmd.Flags().String("deadline", "", "Deadline")

	jobReviseCmd.Flags().StringP("reason", "r", "", "Why the job is revised")

	jobRepairCmd.Flags().StringP("description", "d", "", "Work performed")
	jobRepairCmd.Flags().String("notes", "", "Technician notes")
	jobRepairCmd.Flags().String("started", "", "Start time")
	jobRepairCmd.Flags().String("completed", "", "Completion time")
	jobRepairCmd.Flags().Int("minutes", 0, "Estimated minutes")

	jobCmd.AddCommand(jobCreateCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobStatusCmd)
	jobCmd.AddCommand(jobReviseCmd)
	jobCmd.AddCommand(jobHistoryCmd)
	jobCmd.AddCommand(jobAssignCmd)
	jobCmd.AddCommand(jobAddPartCmd)
	jobCmd.AddCommand(jobRepairCmd)
	jobCmd.AddCommand(jobDeleteCmd)
}

// JobCmd returns the job command
func JobCmd() *cobra.Command {
	return jobCmd
}
