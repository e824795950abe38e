package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE flows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				version INT NOT NULL DEFAULT 1,
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'published', 'archived')),
				data JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_flows_status ON flows(status);
			CREATE INDEX idx_flows_created_at ON flows(created_at);
		`,
		2: `
			CREATE TABLE bots (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				flow_id UUID,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_bots_flow_id ON bots(flow_id);
		`,
		3: `
			CREATE TABLE workflow_executions (
				id VARCHAR(64) PRIMARY KEY,
				flow_id UUID NOT NULL,
				conversation_id VARCHAR(255),
				trigger_type VARCHAR(50),
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed', 'cancelled')),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				input_data JSONB,
				output_data JSONB,
				error_message TEXT,
				total_nodes INT NOT NULL DEFAULT 0,
				completed_nodes INT NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_workflow_executions_flow_id ON workflow_executions(flow_id);
			CREATE INDEX idx_workflow_executions_status ON workflow_executions(status);
			CREATE INDEX idx_workflow_executions_started_at ON workflow_executions(started_at);

			CREATE TABLE node_executions (
				id UUID PRIMARY KEY,
				workflow_execution_id VARCHAR(64) NOT NULL REFERENCES workflow_executions(id) ON DELETE CASCADE,
				node_id VARCHAR(255) NOT NULL,
				node_type VARCHAR(255) NOT NULL,
				node_label VARCHAR(255),
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				execution_time_ms BIGINT,
				input_data JSONB,
				output_data JSONB,
				error_message TEXT
			);

			CREATE INDEX idx_node_executions_execution_id ON node_executions(workflow_execution_id);
			CREATE INDEX idx_node_executions_node_id ON node_executions(node_id);
		`,
	}
}
